package notify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"expensetracker/internal/engine"
	apperrors "expensetracker/internal/errors"
)

// AlertSource evaluates budget notifications for a user.
type AlertSource interface {
	CheckBudgetNotifications(userID string) (*engine.NotificationResult, error)
}

// Processor turns jobs into messages and sends them.
type Processor struct {
	sender Sender
	alerts AlertSource
	log    *zap.SugaredLogger
}

// NewProcessor creates a processor. alerts may be nil when budget_check jobs
// are never enqueued.
func NewProcessor(sender Sender, alerts AlertSource, log *zap.SugaredLogger) *Processor {
	return &Processor{sender: sender, alerts: alerts, log: log}
}

// Handle processes one job.
func (p *Processor) Handle(ctx context.Context, job Job) error {
	switch job.Kind {
	case KindWelcome:
		msg, err := WelcomeMessage(job.Recipient)
		if err != nil {
			return Permanent(err)
		}
		return p.sender.Send(ctx, msg)
	case KindTransactionRecorded:
		msg, err := TransactionMessage(job.Recipient, job.TransactionType, job.Amount, job.Category)
		if err != nil {
			return Permanent(err)
		}
		return p.sender.Send(ctx, msg)
	case KindBudgetCheck:
		return p.checkBudgets(ctx, job)
	default:
		return Permanent(fmt.Errorf("unknown job kind %q", job.Kind))
	}
}

func (p *Processor) checkBudgets(ctx context.Context, job Job) error {
	if p.alerts == nil {
		return Permanent(errors.New("budget check requested without an alert source"))
	}

	result, err := p.alerts.CheckBudgetNotifications(job.Recipient.UserID)
	if err != nil {
		err = fmt.Errorf("evaluate budgets for user %s: %w", job.Recipient.UserID, err)
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return Permanent(err)
		}
		return err
	}
	if result.Disabled() {
		return nil
	}

	var errs []error
	sent := 0
	for _, n := range result.Notifications {
		if job.Category != "" && n.Category != job.Category {
			continue
		}
		msg, err := BudgetAlertMessage(AlertFor(job.Recipient, n))
		if err != nil {
			errs = append(errs, Permanent(err))
			continue
		}
		if err := p.sender.Send(ctx, msg); err != nil {
			errs = append(errs, err)
			continue
		}
		sent++
		p.log.Debugw("budget alert sent", "user_id", job.Recipient.UserID, "budget_id", n.BudgetID, "percentage", n.PercentageSpent)
	}
	// Alerts already sent must not be repeated by a redelivery.
	if sent > 0 {
		return Permanent(errors.Join(errs...))
	}
	return errors.Join(errs...)
}
