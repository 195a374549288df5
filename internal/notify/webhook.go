// Package notify manda recordatorios operativos a un incoming webhook
// (formato Slack). Si no hay URL configurada, todo es no-op.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shelter-ops/internal/domain/medical"
	"shelter-ops/internal/platform/httpclient"
)

const (
	colorOrange = "#FFA500"

	username = "Shelter Ops"
)

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type slackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Fields    []slackField `json:"fields"`
	Timestamp int64        `json:"ts"`
}

type slackWebhookRequest struct {
	Username    string            `json:"username"`
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments"`
}

type Notifier struct {
	webhookURL string
	http       *httpclient.Client
}

func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: strings.TrimSpace(webhookURL),
		http:       httpclient.New(10 * time.Second),
	}
}

func (n *Notifier) IsConfigured() bool {
	return n != nil && n.webhookURL != ""
}

// OverdueTasks avisa cuántas tareas médicas quedaron vencidas tras el
// sweep. Un solo mensaje por corrida, no uno por tarea.
func (n *Notifier) OverdueTasks(ctx context.Context, tasks []medical.Task) error {
	if !n.IsConfigured() || len(tasks) == 0 {
		return nil
	}

	byOrg := make(map[string]int)
	for _, t := range tasks {
		byOrg[t.OrgID]++
	}

	fields := make([]slackField, 0, len(byOrg))
	for orgID, count := range byOrg {
		fields = append(fields, slackField{
			Title: orgID,
			Value: fmt.Sprintf("%d tareas vencidas", count),
			Short: true,
		})
	}

	payload := slackWebhookRequest{
		Username: username,
		Text:     fmt.Sprintf("⚠️ %d tareas médicas pasaron a overdue", len(tasks)),
		Attachments: []slackAttachment{{
			Color:     colorOrange,
			Title:     "Tareas médicas vencidas",
			Fields:    fields,
			Timestamp: time.Now().Unix(),
		}},
	}

	return n.http.DoJSON(ctx, http.MethodPost, n.webhookURL, nil, payload, nil)
}
