package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/journeyconnect/journeyconnect/internal/common"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
	"github.com/journeyconnect/journeyconnect/internal/server/records"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/repomanager"
)

// MessageService sends direct and broadcast messages and lists the feed.
type MessageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	manager     *records.Manager[models.Message]
}

func NewMessageService(db *sql.DB, m repomanager.RepositoryManager, manager *records.Manager[models.Message]) *MessageService {
	return &MessageService{db: db, repomanager: m, manager: manager}
}

// Send stores a message from sender. A nil or blank recipient broadcasts
// to everyone; a recipient that does not exist is ErrorNotFound.
func (s *MessageService) Send(ctx context.Context, content string, recipientID *string, sender models.User) (models.Message, error) {
	if recipientID != nil {
		id := strings.TrimSpace(*recipientID)
		if id == "" {
			recipientID = nil
		} else {
			if _, err := s.repomanager.Users(s.db).Get(ctx, id); err != nil {
				if errors.Is(err, common.ErrorNotFound) {
					return models.Message{}, fmt.Errorf("recipient %s: %w", id, common.ErrorNotFound)
				}
				return models.Message{}, fmt.Errorf("error loading recipient: %w", err)
			}
			recipientID = &id
		}
	}
	return s.manager.Create(ctx, models.Message{Content: content, RecipientID: recipientID}, sender)
}

// List returns the messages actor sent, received, or that were broadcast,
// oldest first.
func (s *MessageService) List(ctx context.Context, actor models.User) ([]models.Message, error) {
	return s.manager.List(ctx, actor, records.Filter{})
}
