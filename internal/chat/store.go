package chat

import (
	"log"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/startupbakery/chatd/models"
)

// Conversation owns one id's full message history. The store keeps the full
// history; trimming applies only to the per-call outgoing copy. Process calls
// for the same conversation are serialized on mu.
type Conversation struct {
	ID string

	mu       sync.Mutex
	messages []models.Message
}

func (c *Conversation) append(m models.Message) {
	c.messages = append(c.messages, m)
}

// Messages returns a copy of the history in conversational order.
func (c *Conversation) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) info() models.ConversationInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	info := models.ConversationInfo{ID: c.ID, MessageCount: len(c.messages)}
	for _, m := range c.messages {
		if m.Role == models.RoleUser {
			info.FirstUserAt = m.Timestamp
			break
		}
	}
	return info
}

// Store maps conversation ids to their state. It is constructed once and
// passed to request handlers; creation and removal are atomic under mu.
type Store struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
	logger        *log.Logger
}

func NewStore(logger *log.Logger) *Store {
	return &Store{
		conversations: make(map[string]*Conversation),
		logger:        logger,
	}
}

// GetOrCreate returns the conversation for id, creating it with an empty
// history on first use. An empty id gets a fresh uuid.
func (s *Store) GetOrCreate(id string) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		id = uuid.NewString()
	}
	if conv, ok := s.conversations[id]; ok {
		return conv
	}
	conv := &Conversation{ID: id}
	s.conversations[id] = conv
	if s.logger != nil {
		s.logger.Printf("created conversation %s (total %d)", id, len(s.conversations))
	}
	return conv
}

// Clear removes all history for id and forgets the id entirely. Clearing an
// unknown id is a no-op, not an error.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[id]; !ok {
		if s.logger != nil {
			s.logger.Printf("clear requested for unknown conversation %s", id)
		}
		return
	}
	delete(s.conversations, id)
	if s.logger != nil {
		s.logger.Printf("cleared conversation %s", id)
	}
}

// List reports diagnostic info for every known conversation, sorted by id.
func (s *Store) List() []models.ConversationInfo {
	s.mu.RLock()
	convs := make([]*Conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		convs = append(convs, c)
	}
	s.mu.RUnlock()

	out := make([]models.ConversationInfo, 0, len(convs))
	for _, c := range convs {
		out = append(out, c.info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
