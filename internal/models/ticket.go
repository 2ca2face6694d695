package models

import "time"

// SupportTicket представляет обращение пользователя в поддержку.
// Меняет статус и добавляет ответ только администратор.
type SupportTicket struct {
	ID            int
	Username      string
	Subject       string
	Message       string
	Status        string // open | answered | closed
	AdminResponse string
	CreatedAt     time.Time
}

// Статусы обращения.
const (
	TicketStatusOpen     = "open"
	TicketStatusAnswered = "answered"
	TicketStatusClosed   = "closed"
)

// TicketInfo дополняет обращение email отправителя для админ-консоли.
type TicketInfo struct {
	SupportTicket
	Email string
}

// DummyTicket используется для приёма нового обращения из JSON-запроса.
type DummyTicket struct {
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// DummyTicketResponse используется для приёма ответа администратора.
type DummyTicketResponse struct {
	Response string `json:"response" validate:"required"`
	Status   string `json:"status" validate:"omitempty,oneof=open answered closed"`
}
