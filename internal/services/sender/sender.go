// Package sender читает уведомления из очередей и отправляет письма
// пользователям через SMTP.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/warrenposo/cloudmining-backend/internal/lib/sl"
	"github.com/warrenposo/cloudmining-backend/internal/lib/smtp"
	"github.com/warrenposo/cloudmining-backend/internal/models"
)

// Transport описывает подключение к SMTP-серверу.
type Transport interface {
	Connect() (smtp.Client, error)
	GetSMTPUser() string
}

// SenderService отправляет письма по сообщениям из очередей уведомлений.
type SenderService struct {
	transport Transport
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport Transport, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendPlanExpiring отправляет письмо о плане, истекающем завтра.
func (s *SenderService) SendPlanExpiring(body []byte) error {
	var message models.UserPlanInfo
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.Email}
	subject := "Уведомление о скором окончании контракта майнинга"
	bodyText := fmt.Sprintf("Здравствуйте, %s!\n\nВаш контракт %s заканчивается завтра.\n\nЧтобы не останавливать добычу, купите новый план заранее.",
		message.Username, message.PlanName)

	return s.sendEmail(to, subject, bodyText)
}

// SendDepositConfirmed отправляет письмо о зачислении депозита на баланс.
func (s *SenderService) SendDepositConfirmed(body []byte) error {
	var message models.DepositConfirmedNotification
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.Email}
	subject := "Депозит зачислен на баланс"
	bodyText := fmt.Sprintf("Здравствуйте, %s!\n\nВаш депозит %s на сумму %.2f USD подтверждён и зачислен на баланс.",
		message.Username, message.TxID, message.AmountUSD)

	return s.sendEmail(to, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), "error", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, "error", sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
