package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nguyentranbao-ct/community-realtime/internal/config"
)

// Runs against a live deployment named by DATABASE_URI, e.g. mongodb://localhost:27017.
func TestSettingsStorage(t *testing.T) {
	uri := os.Getenv("DATABASE_URI")
	if uri == "" {
		t.Skip("DATABASE_URI is not set")
	}
	hosts := options.Client().ApplyURI(uri).Hosts
	require.NotEmpty(t, hosts)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := NewConnection(ctx, config.DatabaseConfig{
		Hosts:    hosts,
		Direct:   len(hosts) == 1,
		Database: "community_realtime_test",
	})
	require.NoError(t, err)

	collection := "settings_" + uuid.NewString()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Database.Collection(collection).Drop(ctx)
		_ = db.Close(ctx)
	})
	s := NewSettingsStorage(db, collection)

	data, err := s.Load(ctx, "feedback-settings")
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, s.Save(ctx, "feedback-settings", []byte(`{"enabled":false}`)))
	data, err = s.Load(ctx, "feedback-settings")
	require.NoError(t, err)
	assert.JSONEq(t, `{"enabled":false}`, string(data))

	require.NoError(t, s.Save(ctx, "feedback-settings", []byte(`{"enabled":true}`)))
	data, err = s.Load(ctx, "feedback-settings")
	require.NoError(t, err)
	assert.JSONEq(t, `{"enabled":true}`, string(data))
}
