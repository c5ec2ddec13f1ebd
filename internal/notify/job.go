// Package notify delivers user notifications off the request path.
//
// Request handlers build a Job and hand it to a Queue. A Queue implementation
// (the in-process Pool or the RabbitMQ-backed AMQPQueue) runs the jobs through a
// Processor, which renders messages and passes them to a Sender.
package notify

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"expensetracker/internal/models"
)

// Kind identifies what a job should deliver.
type Kind string

const (
	KindWelcome             Kind = "welcome"
	KindTransactionRecorded Kind = "transaction_recorded"
	KindBudgetCheck         Kind = "budget_check"
)

// Recipient is the destination identity of a notification.
type Recipient struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	PushToken string `json:"push_token,omitempty"`
}

// RecipientFor captures the delivery details of a user.
func RecipientFor(user *models.User) Recipient {
	return Recipient{
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		PushToken: user.Preferences.PushToken,
	}
}

// Job is a unit of notification work. It is serialized as JSON when it crosses
// a broker.
type Job struct {
	Kind            Kind                   `json:"kind"`
	Recipient       Recipient              `json:"recipient"`
	TransactionType models.TransactionType `json:"transaction_type,omitempty"`
	Amount          decimal.Decimal        `json:"amount"`
	Category        models.Category        `json:"category,omitempty"`
}

// WelcomeJob greets a newly registered user.
func WelcomeJob(user *models.User) Job {
	return Job{Kind: KindWelcome, Recipient: RecipientFor(user)}
}

// TransactionJob announces a recorded transaction.
func TransactionJob(user *models.User, tx *models.Transaction) Job {
	return Job{
		Kind:            KindTransactionRecorded,
		Recipient:       RecipientFor(user),
		TransactionType: tx.Type,
		Amount:          tx.Amount,
		Category:        tx.Category,
	}
}

// BudgetCheckJob re-evaluates the user's budgets for a category and alerts on
// any that reached their threshold.
func BudgetCheckJob(user *models.User, category models.Category) Job {
	return Job{Kind: KindBudgetCheck, Recipient: RecipientFor(user), Category: category}
}

// Encode serializes a job for transport.
func (j Job) Encode() ([]byte, error) {
	return json.Marshal(j)
}

// DecodeJob parses a serialized job and rejects unknown kinds.
func DecodeJob(body []byte) (Job, error) {
	var j Job
	if err := json.Unmarshal(body, &j); err != nil {
		return Job{}, fmt.Errorf("decode job: %w", err)
	}
	switch j.Kind {
	case KindWelcome, KindTransactionRecorded, KindBudgetCheck:
		return j, nil
	default:
		return Job{}, fmt.Errorf("decode job: unknown kind %q", j.Kind)
	}
}
