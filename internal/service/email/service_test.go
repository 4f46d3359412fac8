package email

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/resend/resend-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-engagement/internal/domain"
)

type fakeSender struct {
	got *resend.SendEmailRequest
	err error
}

func (f *fakeSender) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	f.got = params
	if f.err != nil {
		return nil, f.err
	}
	return &resend.SendEmailResponse{Id: "msg_1"}, nil
}

func TestSendNotificationEmail(t *testing.T) {
	sender := &fakeSender{}
	svc := NewServiceWithSender(sender, "noreply@example.com", "CRM")

	to := domain.Recipient{ID: uuid.New(), Email: "ana@example.com", FullName: "Ana"}
	notif := domain.Notification{
		Type:    domain.NotifChatInactive2Days,
		Title:   "Chat inactive for 2 days",
		Message: `No messages in "Acme" for 2 days.`,
	}

	require.NoError(t, svc.SendNotificationEmail(context.Background(), to, notif))

	require.NotNil(t, sender.got)
	assert.Equal(t, "CRM <noreply@example.com>", sender.got.From)
	assert.Equal(t, []string{"ana@example.com"}, sender.got.To)
	assert.Equal(t, notif.Title, sender.got.Subject)
	assert.Contains(t, sender.got.Html, "Hi Ana,")
	assert.Contains(t, sender.got.Html, "&#34;Acme&#34;")
}

func TestSendNotificationEmail_Errors(t *testing.T) {
	sender := &fakeSender{err: errors.New("422 invalid domain")}
	svc := NewServiceWithSender(sender, "noreply@example.com", "CRM")

	err := svc.SendNotificationEmail(context.Background(), domain.Recipient{ID: uuid.New()}, domain.Notification{})
	assert.Error(t, err, "recipient without address")
	assert.Nil(t, sender.got)

	err = svc.SendNotificationEmail(context.Background(), domain.Recipient{ID: uuid.New(), Email: "a@b.c"}, domain.Notification{Title: "x"})
	assert.Error(t, err)
}
