package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/teomanager/teomanager-backend/pkg/db/models"
	"github.com/teomanager/teomanager-backend/pkg/enums"
	"github.com/teomanager/teomanager-backend/pkg/logger"
)

// Message is one email to enqueue. Data is marshalled into the payload
// column and rendered by the worker at delivery time.
type Message struct {
	Kind      enums.EmailKind
	Recipient string
	Subject   string
	Data      any
}

// Service enqueues transactional emails alongside the business write that
// triggered them.
type Service struct {
	repo *Repository
	logg *logger.Logger
}

func NewService(repo *Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg}
}

// Enqueue writes the outbox row inside tx. The send happens asynchronously;
// a rollback of tx discards the email with the rest of the write.
func (s *Service) Enqueue(ctx context.Context, tx *gorm.DB, msg Message) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if !msg.Kind.IsValid() {
		return errors.New("invalid email kind")
	}
	if msg.Recipient == "" {
		return errors.New("recipient required")
	}

	payload, err := json.Marshal(msg.Data)
	if err != nil {
		return err
	}

	row := models.EmailOutbox{
		Kind:          msg.Kind,
		Recipient:     msg.Recipient,
		Subject:       msg.Subject,
		Payload:       payload,
		Status:        enums.OutboxStatusPending,
		NextAttemptAt: time.Now(),
	}
	if err := s.repo.Insert(tx, row); err != nil {
		return err
	}

	if s.logg != nil {
		fields := map[string]any{
			"email_kind": msg.Kind.String(),
			"recipient":  msg.Recipient,
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "email enqueued")
	}
	return nil
}
