package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"

	"expensetracker/internal/engine"
	"expensetracker/internal/models"
)

// Message is a rendered notification ready for any Sender.
type Message struct {
	To      Recipient
	Subject string
	HTML    string

	// Push payload
	Title string
	Body  string
	Data  map[string]string
}

// BudgetAlert is the payload of a triggered budget notification.
type BudgetAlert struct {
	Recipient    Recipient
	BudgetID     string
	Category     models.Category
	AmountSpent  decimal.Decimal
	BudgetAmount decimal.Decimal
	Percentage   string
	IsOverBudget bool
}

// AlertFor builds a budget alert for a recipient from an evaluated notification.
func AlertFor(to Recipient, n engine.Notification) BudgetAlert {
	return BudgetAlert{
		Recipient:    to,
		BudgetID:     n.BudgetID,
		Category:     n.Category,
		AmountSpent:  n.AmountSpent,
		BudgetAmount: n.BudgetAmount,
		Percentage:   n.PercentageSpent,
		IsOverBudget: n.IsOverBudget,
	}
}

const layout = `{{define "layout"}}<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #e0e0e0; border-radius: 5px;">{{template "content" .}}</div>{{end}}`

var (
	welcomeTmpl = mustTemplate(`{{define "content"}}
<h2 style="color: #2c3e50;">Welcome to Expense Tracker, {{.Name}}!</h2>
<p>Thank you for joining. With Expense Tracker you can track income and expenses, categorize transactions and set budgets for each category.</p>
<p>Get started by adding your first transaction!</p>
{{end}}`)

	transactionTmpl = mustTemplate(`{{define "content"}}
<h2 style="color: #2c3e50;">Transaction Notification</h2>
<p>A new {{.Type}} of {{.Amount}} has been recorded in your account under the category "{{.Category}}".</p>
<p>Log in to your account to view more details.</p>
{{end}}`)

	budgetTmpl = mustTemplate(`{{define "content"}}
{{if .IsOverBudget}}<h2 style="color: #e74c3c;">Budget Exceeded!</h2>{{else}}<h2 style="color: #f39c12;">Budget Alert</h2>{{end}}
<p>Your {{.Category}} budget:</p>
<ul>
  <li>Budget Amount: {{.BudgetAmount}}</li>
  <li>Amount Spent: {{.AmountSpent}}</li>
  <li>Percentage Used: {{.Percentage}}%</li>
</ul>
{{if .IsOverBudget}}<p>You have exceeded your budget for this category.</p>{{else}}<p>You are approaching your budget limit for this category.</p>{{end}}
{{end}}`)
)

func mustTemplate(content string) *template.Template {
	t := template.Must(template.New("layout").Parse(layout))
	return template.Must(t.Parse(content))
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// WelcomeMessage renders the registration greeting.
func WelcomeMessage(to Recipient) (Message, error) {
	html, err := render(welcomeTmpl, to)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: "Welcome to Expense Tracker!",
		HTML:    html,
		Title:   "Welcome to Expense Tracker",
		Body:    fmt.Sprintf("Hi %s, start by adding your first transaction.", to.Name),
	}, nil
}

// TransactionMessage renders the confirmation for a recorded transaction.
func TransactionMessage(to Recipient, txType models.TransactionType, amount decimal.Decimal, category models.Category) (Message, error) {
	data := struct {
		Type     models.TransactionType
		Amount   string
		Category models.Category
	}{txType, amount.StringFixed(2), category}

	html, err := render(transactionTmpl, data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("New %s Recorded in Expense Tracker", txType),
		HTML:    html,
		Title:   fmt.Sprintf("New %s recorded", txType),
		Body:    fmt.Sprintf("%s %s in %s", txType, data.Amount, category),
		Data:    map[string]string{"type": string(txType), "category": category.String()},
	}, nil
}

// BudgetAlertMessage renders a threshold or over-budget alert.
func BudgetAlertMessage(alert BudgetAlert) (Message, error) {
	data := struct {
		Category     models.Category
		BudgetAmount string
		AmountSpent  string
		Percentage   string
		IsOverBudget bool
	}{alert.Category, alert.BudgetAmount.StringFixed(2), alert.AmountSpent.StringFixed(2), alert.Percentage, alert.IsOverBudget}

	html, err := render(budgetTmpl, data)
	if err != nil {
		return Message{}, err
	}

	subject := fmt.Sprintf("Budget Alert for %s", alert.Category)
	if alert.IsOverBudget {
		subject = fmt.Sprintf("Budget Exceeded for %s", alert.Category)
	}
	return Message{
		To:      alert.Recipient,
		Subject: subject,
		HTML:    html,
		Title:   subject,
		Body:    fmt.Sprintf("You have used %s%% of your %s budget.", alert.Percentage, alert.Category),
		Data: map[string]string{
			"budget_id":  alert.BudgetID,
			"category":   alert.Category.String(),
			"percentage": alert.Percentage,
		},
	}, nil
}
