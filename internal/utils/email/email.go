package email

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Dan9191/financial-time-machine/internal/config"
	"github.com/Dan9191/financial-time-machine/internal/models"
	"github.com/Dan9191/financial-time-machine/internal/utils"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// ErrDisabled is returned when SMTP is not configured
var ErrDisabled = errors.New("email delivery is not configured")

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// SendProjectionSummary mails the headline figures of a projection, followed
// by the generated advice when there is any
func (s *Sender) SendProjectionSummary(to string, result models.ProjectionResult, advice string) error {
	if !s.cfg.EmailEnabled() {
		return ErrDisabled
	}

	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Your %d-year projection: %s", result.YearsToProject, result.Strategy)
	e.Text = []byte(summaryBody(result, advice))

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}

	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send projection summary to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

func summaryBody(result models.ProjectionResult, advice string) string {
	var b strings.Builder
	sum := result.Summary

	fmt.Fprintf(&b, "Strategy: %s\n%s\n\n", result.Strategy, result.Description)
	fmt.Fprintf(&b, "After %d years:\n", result.YearsToProject)
	fmt.Fprintf(&b, "  Savings:   %s\n", utils.FormatCurrency(sum.FinalSavings))
	fmt.Fprintf(&b, "  Debt:      %s\n", utils.FormatCurrency(sum.FinalDebt))
	fmt.Fprintf(&b, "  Net worth: %s (%s since today)\n",
		utils.FormatCurrency(sum.FinalNetWorth), utils.FormatCurrency(sum.NetWorthChange))
	if sum.DebtFreeYear != nil {
		fmt.Fprintf(&b, "  Debt free in year %d\n", *sum.DebtFreeYear)
	}
	if sum.HomePurchaseYear != nil {
		fmt.Fprintf(&b, "  Home purchased in year %d\n", *sum.HomePurchaseYear)
	}

	b.WriteString("\nYear by year:\n")
	for _, p := range result.Timeline {
		fmt.Fprintf(&b, "  Year %2d  savings %s  debt %s  net worth %s\n",
			p.Year, utils.FormatCurrency(p.Savings), utils.FormatCurrency(p.Debt), utils.FormatCurrency(p.NetWorth))
	}

	if paragraphs := utils.SplitParagraphs(advice); len(paragraphs) > 0 {
		b.WriteString("\nAdvice:\n\n")
		b.WriteString(strings.Join(paragraphs, "\n\n"))
		b.WriteString("\n\nThis advice is generated by AI from the figures above and is not professional financial advice.\n")
	}

	b.WriteString("\nBest regards,\nFinancial Time Machine")
	return b.String()
}
