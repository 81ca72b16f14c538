package viewmodel

import (
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/studyboard-api/internal/models"
)

// Participant identifies one endpoint of a conversation.
type Participant struct {
	ID   uint            `json:"id"`
	Type models.UserType `json:"type"`
}

// Key renders the participant as "type:id", used for unread count maps.
func (p Participant) Key() string {
	return fmt.Sprintf("%s:%d", p.Type, p.ID)
}

// Conversation is every message exchanged between the viewer and one partner.
type Conversation struct {
	PartnerID   uint             `json:"partner_id"`
	PartnerType models.UserType  `json:"partner_type"`
	Messages    []models.Message `json:"messages"`
	UnreadCount int              `json:"unread_count"`
}

// Partner returns the conversation partner as a Participant.
func (c Conversation) Partner() Participant {
	return Participant{ID: c.PartnerID, Type: c.PartnerType}
}

// Threads is the threaded inbox for a viewer.
type Threads struct {
	Conversations []Conversation `json:"conversations"`
	UnreadCounts  map[string]int `json:"unread_counts"`
}

// ThreadConversations groups messages by partner. Messages inside a thread are
// ascending by creation time; threads are ordered by their latest message, newest first.
// Messages the viewer neither sent nor received are ignored.
func ThreadConversations(messages []models.Message, viewer Participant) Threads {
	index := make(map[string]int)
	conversations := make([]Conversation, 0)
	unread := make(map[string]int)

	for _, message := range messages {
		partner, ok := partnerOf(message, viewer)
		if !ok {
			continue
		}

		key := partner.Key()
		pos, exists := index[key]
		if !exists {
			pos = len(conversations)
			index[key] = pos
			conversations = append(conversations, Conversation{
				PartnerID:   partner.ID,
				PartnerType: partner.Type,
				Messages:    make([]models.Message, 0, 4),
			})
			unread[key] = 0
		}

		conversations[pos].Messages = append(conversations[pos].Messages, message)
		if isUnreadFor(message, viewer) {
			conversations[pos].UnreadCount++
			unread[key]++
		}
	}

	for i := range conversations {
		msgs := conversations[i].Messages
		sort.SliceStable(msgs, func(a, b int) bool {
			return msgs[a].CreatedAt.Before(msgs[b].CreatedAt)
		})
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		return lastActivity(conversations[i]).After(lastActivity(conversations[j]))
	})

	return Threads{Conversations: conversations, UnreadCounts: unread}
}

// UnreadMessageIDs lists the messages that opening the conversation must mark read.
func UnreadMessageIDs(conversation Conversation, viewer Participant) []uint {
	ids := make([]uint, 0, conversation.UnreadCount)
	for _, message := range conversation.Messages {
		if isUnreadFor(message, viewer) {
			ids = append(ids, message.ID)
		}
	}
	return ids
}

// FindConversation returns the thread with partner, or an empty one when none exists yet.
func FindConversation(threads Threads, partner Participant) Conversation {
	for _, conversation := range threads.Conversations {
		if conversation.PartnerID == partner.ID && conversation.PartnerType == partner.Type {
			return conversation
		}
	}
	return Conversation{
		PartnerID:   partner.ID,
		PartnerType: partner.Type,
		Messages:    []models.Message{},
	}
}

func partnerOf(message models.Message, viewer Participant) (Participant, bool) {
	sender := Participant{ID: message.SenderID, Type: message.SenderType}
	recipient := Participant{ID: message.RecipientID, Type: message.RecipientType}

	switch {
	case sender == viewer:
		return recipient, true
	case recipient == viewer:
		return sender, true
	default:
		return Participant{}, false
	}
}

func isUnreadFor(message models.Message, viewer Participant) bool {
	return !message.Read && message.IsAddressedTo(viewer.ID, viewer.Type)
}

func lastActivity(conversation Conversation) (latest time.Time) {
	for _, message := range conversation.Messages {
		if message.CreatedAt.After(latest) {
			latest = message.CreatedAt
		}
	}
	return latest
}
