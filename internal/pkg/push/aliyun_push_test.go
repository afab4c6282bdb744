package push

import (
	"context"
	"testing"
	"wellness_shop/internal/pkg/config"

	"github.com/stretchr/testify/assert"
)

type recordingPush struct {
	account string
	title   string
	ext     map[string]string
}

func (r *recordingPush) PushToAccount(_ context.Context, accountID, title, _ string, ext map[string]string) error {
	r.account = accountID
	r.title = title
	r.ext = ext
	return nil
}

func TestOperatorNotifier(t *testing.T) {
	rec := &recordingPush{}
	n := NewOperatorNotifier(rec, "ops-1")

	err := n.Notify(context.Background(), "Nouvelle preuve", "Commande abc", map[string]string{"order_id": "abc"})
	assert.NoError(t, err)
	assert.Equal(t, "ops-1", rec.account)
	assert.Equal(t, "abc", rec.ext["order_id"])
}

func TestOperatorNotifierWithoutAccount(t *testing.T) {
	rec := &recordingPush{}
	n := NewOperatorNotifier(rec, "")
	assert.NoError(t, n.Notify(context.Background(), "t", "b", nil))
	assert.Empty(t, rec.account)

	var nilNotifier *OperatorNotifier
	assert.NoError(t, nilNotifier.Notify(context.Background(), "t", "b", nil))
}

func TestNewAliyunPushServiceRequiresConfig(t *testing.T) {
	_, err := NewAliyunPushService(config.PushConfig{})
	assert.Error(t, err)
}
