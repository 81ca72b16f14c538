package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/studyboard-api/internal/dto"
	"github.com/noah-isme/studyboard-api/internal/models"
	"github.com/noah-isme/studyboard-api/internal/observability"
	"github.com/noah-isme/studyboard-api/internal/repository"
	"github.com/noah-isme/studyboard-api/internal/viewmodel"
)

const (
	inboxBufferSize = 16

	// InboxEventCreated is pushed when a message reaches the participant's inbox.
	InboxEventCreated = "message.created"
	// InboxEventRead is pushed to the sender when the recipient reads a message.
	InboxEventRead = "message.read"
	// InboxEventReady is the first frame on a new inbox connection.
	InboxEventReady = "inbox.ready"
)

// MessageService stores direct messages and fans them out to live inboxes.
type MessageService interface {
	List(ctx context.Context, query dto.ParticipantQuery) ([]models.Message, error)
	Conversations(ctx context.Context, query dto.ParticipantQuery) ([]viewmodel.Conversation, error)
	ConversationsView(ctx context.Context, query dto.ParticipantQuery) (dto.ConversationsResponse, error)
	Send(ctx context.Context, payload dto.SendMessageRequest) (models.Message, error)
	MarkRead(ctx context.Context, id uint) (models.Message, error)
	Open(ctx context.Context, payload dto.OpenConversationRequest) (dto.OpenConversationResponse, error)
	Subscribe(participant viewmodel.Participant) (<-chan dto.InboxEvent, func())
	Start(ctx context.Context)
}

type messageService struct {
	repo        repository.MessageRepository
	directory   DirectoryService
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	tracer      trace.Tracer
	logger      zerolog.Logger
	inbox       *inboxBroker
	nodeID      string
}

type inboxEnvelope struct {
	Source string         `json:"source"`
	Event  dto.InboxEvent `json:"event"`
	SentAt time.Time      `json:"sent_at"`
}

type inboxBroker struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan dto.InboxEvent]struct{}
	log         zerolog.Logger
}

// MessageDeps groups the messaging collaborators. Redis and NATS are optional.
type MessageDeps struct {
	Messages    repository.MessageRepository
	Directory   DirectoryService
	Redis       *redis.Client
	NATS        *nats.Conn
	ChannelBase string
}

// NewMessageService constructs the messaging service.
func NewMessageService(deps MessageDeps, validate *validator.Validate, logger zerolog.Logger) MessageService {
	stream := ""
	subject := ""
	if deps.ChannelBase != "" {
		stream = deps.ChannelBase + ":messages"
		subject = strings.ReplaceAll(deps.ChannelBase, ":", ".") + ".messages"
	}

	return &messageService{
		repo:        deps.Messages,
		directory:   deps.Directory,
		redis:       deps.Redis,
		redisStream: stream,
		nats:        deps.NATS,
		natsSubject: subject,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		tracer:      otel.Tracer("github.com/noah-isme/studyboard-api/internal/service/messages"),
		logger:      logger.With().Str("component", "message_service").Logger(),
		inbox: &inboxBroker{
			subscribers: make(map[string]map[chan dto.InboxEvent]struct{}),
			log:         logger.With().Str("component", "inbox_broker").Logger(),
		},
		nodeID: uuid.NewString(),
	}
}

// Start relays events from other nodes. Events are published to every configured
// broker but consumed from one: NATS when connected, redis otherwise.
func (s *messageService) Start(ctx context.Context) {
	switch {
	case s.nats != nil && s.natsSubject != "":
		go s.consumeNATS(ctx)
	case s.redis != nil && s.redisStream != "":
		go s.consumeRedis(ctx)
	}
}

func (s *messageService) List(ctx context.Context, query dto.ParticipantQuery) ([]models.Message, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, err
	}

	messages, err := s.repo.ListForUser(ctx, query.UserID, models.UserType(query.UserType))
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

func (s *messageService) Conversations(ctx context.Context, query dto.ParticipantQuery) ([]viewmodel.Conversation, error) {
	threads, err := s.threads(ctx, query)
	if err != nil {
		return nil, err
	}
	return threads.Conversations, nil
}

func (s *messageService) ConversationsView(ctx context.Context, query dto.ParticipantQuery) (dto.ConversationsResponse, error) {
	threads, err := s.threads(ctx, query)
	if err != nil {
		return dto.ConversationsResponse{}, err
	}
	return dto.NewConversationsResponse(threads, query.Participant()), nil
}

func (s *messageService) threads(ctx context.Context, query dto.ParticipantQuery) (viewmodel.Threads, error) {
	messages, err := s.List(ctx, query)
	if err != nil {
		return viewmodel.Threads{}, err
	}
	return viewmodel.ThreadConversations(messages, query.Participant()), nil
}

func (s *messageService) Send(ctx context.Context, payload dto.SendMessageRequest) (models.Message, error) {
	if !models.UserType(payload.SenderType).Valid() || !models.UserType(payload.RecipientType).Valid() {
		return models.Message{}, ErrInvalidUserType
	}
	if err := s.validator.Struct(payload); err != nil {
		return models.Message{}, err
	}

	sender := viewmodel.Participant{ID: payload.SenderID, Type: models.UserType(payload.SenderType)}
	recipient := viewmodel.Participant{ID: payload.RecipientID, Type: models.UserType(payload.RecipientType)}
	if sender == recipient {
		return models.Message{}, ErrSelfMessage
	}

	clean := plainText(s.sanitizer, payload.Content)
	if clean == "" {
		return models.Message{}, ErrEmptyMessage
	}

	spanCtx, span := s.tracer.Start(ctx, "messages.send", trace.WithAttributes(
		attribute.String("messages.sender", sender.Key()),
		attribute.String("messages.recipient", recipient.Key()),
	))
	defer span.End()

	if _, err := s.directory.Lookup(spanCtx, sender); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sender_lookup_failed")
		return models.Message{}, err
	}
	if _, err := s.directory.Lookup(spanCtx, recipient); err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrStudentNotFound) || errors.Is(err, ErrTeacherNotFound) {
			span.SetStatus(codes.Error, "recipient_not_found")
			return models.Message{}, ErrRecipientNotFound
		}
		span.SetStatus(codes.Error, "recipient_lookup_failed")
		return models.Message{}, err
	}

	message := models.Message{
		SenderID:      sender.ID,
		SenderType:    sender.Type,
		RecipientID:   recipient.ID,
		RecipientType: recipient.Type,
		Content:       clean,
	}
	if err := s.repo.Create(spanCtx, &message); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "message_create_failed")
		s.logger.Error().Err(err).Str("sender", sender.Key()).Msg("failed to store message")
		return models.Message{}, err
	}

	observability.MessagesSent().WithLabelValues(string(sender.Type)).Inc()
	s.deliver(spanCtx, dto.InboxEvent{Type: InboxEventCreated, Message: &message})

	return message, nil
}

func (s *messageService) MarkRead(ctx context.Context, id uint) (models.Message, error) {
	message, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Message{}, ErrMessageNotFound
		}
		return models.Message{}, err
	}
	if message.Read {
		return message, nil
	}

	changed, err := s.repo.MarkRead(ctx, []uint{id})
	if err != nil {
		return models.Message{}, err
	}
	message.Read = true
	if changed > 0 {
		s.deliver(ctx, dto.InboxEvent{Type: InboxEventRead, Message: &message})
	}

	return message, nil
}

// Open marks every unread message the partner sent to the viewer as read.
func (s *messageService) Open(ctx context.Context, payload dto.OpenConversationRequest) (dto.OpenConversationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.OpenConversationResponse{}, err
	}

	viewer := payload.Viewer()
	threads, err := s.threads(ctx, dto.ParticipantQuery{UserID: viewer.ID, UserType: string(viewer.Type)})
	if err != nil {
		return dto.OpenConversationResponse{}, err
	}

	conversation := viewmodel.FindConversation(threads, payload.Partner())
	ids := viewmodel.UnreadMessageIDs(conversation, viewer)

	changed, err := s.repo.MarkRead(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Str("viewer", viewer.Key()).Msg("failed to mark conversation read")
		return dto.OpenConversationResponse{}, err
	}

	flipped := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		flipped[id] = struct{}{}
	}

	for i := range conversation.Messages {
		if !conversation.Messages[i].IsAddressedTo(viewer.ID, viewer.Type) {
			continue
		}
		conversation.Messages[i].Read = true
		if _, ok := flipped[conversation.Messages[i].ID]; ok && changed > 0 {
			receipt := conversation.Messages[i]
			s.deliver(ctx, dto.InboxEvent{Type: InboxEventRead, Message: &receipt})
		}
	}
	conversation.UnreadCount = 0

	return dto.OpenConversationResponse{Conversation: conversation, MarkedRead: changed}, nil
}

func (s *messageService) Subscribe(participant viewmodel.Participant) (<-chan dto.InboxEvent, func()) {
	channel := make(chan dto.InboxEvent, inboxBufferSize)

	key := participant.Key()
	s.inbox.subscribe(key, channel)
	observability.InboxClients().Inc()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			s.inbox.unsubscribe(key, channel)
			observability.InboxClients().Dec()
		})
	}

	return channel, cleanup
}

func (s *messageService) deliver(ctx context.Context, event dto.InboxEvent) {
	s.broadcast(event)
	if err := s.publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish inbox event")
	}
}

// broadcast pushes created messages to the recipient and read receipts to the sender.
func (s *messageService) broadcast(event dto.InboxEvent) {
	if event.Message == nil {
		return
	}
	target := viewmodel.Participant{ID: event.Message.RecipientID, Type: event.Message.RecipientType}
	if event.Type == InboxEventRead {
		target = viewmodel.Participant{ID: event.Message.SenderID, Type: event.Message.SenderType}
	}
	s.inbox.broadcast(target.Key(), event)
}

func (s *messageService) publish(ctx context.Context, event dto.InboxEvent) error {
	payload, err := json.Marshal(inboxEnvelope{
		Source: s.nodeID,
		Event:  event,
		SentAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.Publish(ctx, s.redisStream, payload).Err(); err != nil {
			return fmt.Errorf("redis publish: %w", err)
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
	}

	return nil
}

func (s *messageService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisStream)
	defer func() {
		_ = pubsub.Close()
	}()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, redis.ErrClosed) {
				return
			}
			s.logger.Error().Err(err).Msg("inbox redis subscription closed")
			return
		}
		s.handleEnvelope([]byte(msg.Payload))
	}
}

func (s *messageService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.Subscribe(s.natsSubject, func(msg *nats.Msg) {
		s.handleEnvelope(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats inbox subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain inbox nats subscription")
		}
	}()
}

// handleEnvelope relays events published by other nodes.
func (s *messageService) handleEnvelope(data []byte) {
	var envelope inboxEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		s.logger.Warn().Err(err).Msg("invalid inbox event")
		return
	}
	if envelope.Source == s.nodeID {
		return
	}
	s.broadcast(envelope.Event)
}

func (b *inboxBroker) subscribe(key string, channel chan dto.InboxEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscribers[key]; !ok {
		b.subscribers[key] = make(map[chan dto.InboxEvent]struct{})
	}
	b.subscribers[key][channel] = struct{}{}
	b.log.Debug().Str("participant", key).Msg("inbox client connected")
}

func (b *inboxBroker) unsubscribe(key string, channel chan dto.InboxEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subscribers, ok := b.subscribers[key]; ok {
		delete(subscribers, channel)
		if len(subscribers) == 0 {
			delete(b.subscribers, key)
		}
	}
	close(channel)
	b.log.Debug().Str("participant", key).Msg("inbox client disconnected")
}

func (b *inboxBroker) broadcast(key string, event dto.InboxEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for channel := range b.subscribers[key] {
		select {
		case channel <- event:
		default:
			b.log.Warn().Str("participant", key).Msg("dropping inbox event for slow client")
		}
	}
}
