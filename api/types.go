package api

import (
	"encoding/json"
	"time"

	"github.com/jrsteele09/go-chat-frontend/internal/utils"
)

// Backend endpoint paths, relative to the configured base URL
const (
	PathLogin    = "/login/"
	PathRegister = "/register/"
	PathChat     = "/chat/"
)

// Message senders
const (
	SenderUser = "User"
	SenderAI   = "AI"
)

// User is the account snapshot returned at login
type User struct {
	ID           int64  `json:"id"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phone_number"`
	Address      string `json:"address"`
	IsSubscribed bool   `json:"is_subscribed,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the token pair and user snapshot. ChatSessions and ClaimUploads are
// kept raw; the front-end only mirrors them.
type LoginResponse struct {
	Message      string          `json:"message"`
	Access       string          `json:"access"`
	Refresh      string          `json:"refresh"`
	User         User            `json:"user"`
	ChatSessions json.RawMessage `json:"chat_sessions,omitempty"`
	ClaimUploads json.RawMessage `json:"claim_uploads,omitempty"`
}

type RegisterRequest struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	ID          int64  `json:"id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

// ChatSession identifies a server side conversation
type ChatSession struct {
	SessionID string `json:"session_id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	IsActive  bool   `json:"is_active"`
}

// ChatMessage is one entry of a transcript. Timestamps are kept exactly as the server sent them.
type ChatMessage struct {
	ID        int64   `json:"id"`
	Sender    string  `json:"sender"`
	Content   string  `json:"content"`
	Flagged   bool    `json:"flagged"`
	FlagType  *string `json:"flag_type"`
	Timestamp string  `json:"timestamp"`
	Session   int64   `json:"session"`
	User      string  `json:"user"`
}

// FromAI reports whether the assistant wrote the message
func (m ChatMessage) FromAI() bool {
	return m.Sender == SenderAI
}

// FlagLabel is the moderation flag, "" when the message isn't flagged
func (m ChatMessage) FlagLabel() string {
	if !m.Flagged {
		return ""
	}
	return utils.Value(m.FlagType)
}

// Time parses Timestamp, returning the zero time when it isn't RFC 3339
func (m ChatMessage) Time() time.Time {
	t, err := time.Parse(time.RFC3339Nano, m.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

type ChatRequest struct {
	Content  string `json:"content"`
	Flagged  *bool  `json:"flagged,omitempty"`
	FlagType string `json:"flag_type,omitempty"`
}

// ChatResponse is the reply to one chat turn. AllMessages is the full transcript of the session.
type ChatResponse struct {
	Session     *ChatSession  `json:"session"`
	UserMessage *ChatMessage  `json:"user_message"`
	AIMessage   *ChatMessage  `json:"ai_message"`
	AllMessages []ChatMessage `json:"all_messages"`
}
