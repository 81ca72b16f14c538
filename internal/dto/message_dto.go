package dto

import (
	"github.com/noah-isme/studyboard-api/internal/models"
	"github.com/noah-isme/studyboard-api/internal/viewmodel"
)

// ParticipantQuery identifies the user whose inbox is requested.
type ParticipantQuery struct {
	UserID   uint   `query:"user_id" validate:"required,gt=0"`
	UserType string `query:"user_type" validate:"required,oneof=student teacher"`
}

// Participant converts the query into the threading key.
func (q ParticipantQuery) Participant() viewmodel.Participant {
	return viewmodel.Participant{ID: q.UserID, Type: models.UserType(q.UserType)}
}

// SendMessageRequest is the body of POST /messages.
type SendMessageRequest struct {
	SenderID      uint   `json:"sender_id" validate:"required,gt=0"`
	SenderType    string `json:"sender_type" validate:"required,oneof=student teacher"`
	RecipientID   uint   `json:"recipient_id" validate:"required,gt=0"`
	RecipientType string `json:"recipient_type" validate:"required,oneof=student teacher"`
	Content       string `json:"content" validate:"required,max=5000"`
}

// OpenConversationRequest marks a conversation as viewed.
type OpenConversationRequest struct {
	UserID      uint   `json:"user_id" validate:"required,gt=0"`
	UserType    string `json:"user_type" validate:"required,oneof=student teacher"`
	PartnerID   uint   `json:"partner_id" validate:"required,gt=0"`
	PartnerType string `json:"partner_type" validate:"required,oneof=student teacher"`
}

// Viewer returns the participant opening the conversation.
func (r OpenConversationRequest) Viewer() viewmodel.Participant {
	return viewmodel.Participant{ID: r.UserID, Type: models.UserType(r.UserType)}
}

// Partner returns the other side of the conversation.
func (r OpenConversationRequest) Partner() viewmodel.Participant {
	return viewmodel.Participant{ID: r.PartnerID, Type: models.UserType(r.PartnerType)}
}

// ConversationsResponse is the threaded inbox with unread bookkeeping.
type ConversationsResponse struct {
	Conversations []viewmodel.Conversation `json:"conversations"`
	UnreadCounts  map[string]int           `json:"unread_counts"`
	TotalUnread   int                      `json:"total_unread"`
	PendingRead   map[string][]uint        `json:"pending_read"`
}

// NewConversationsResponse totals the unread counts of a threaded inbox and lists,
// per partner key, the message IDs that opening the conversation would mark read.
func NewConversationsResponse(threads viewmodel.Threads, viewer viewmodel.Participant) ConversationsResponse {
	total := 0
	for _, count := range threads.UnreadCounts {
		total += count
	}

	pending := make(map[string][]uint)
	for _, conversation := range threads.Conversations {
		if ids := viewmodel.UnreadMessageIDs(conversation, viewer); len(ids) > 0 {
			pending[conversation.Partner().Key()] = ids
		}
	}

	return ConversationsResponse{
		Conversations: threads.Conversations,
		UnreadCounts:  threads.UnreadCounts,
		TotalUnread:   total,
		PendingRead:   pending,
	}
}

// OpenConversationResponse returns the opened thread and how many messages flipped to read.
type OpenConversationResponse struct {
	Conversation viewmodel.Conversation `json:"conversation"`
	MarkedRead   int64                  `json:"marked_read"`
}

// InboxEvent is pushed over the websocket inbox. The ready event carries no message.
type InboxEvent struct {
	Type    string          `json:"type"`
	Message *models.Message `json:"message,omitempty"`
}
