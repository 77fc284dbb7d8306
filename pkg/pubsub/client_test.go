package pubsub

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/trackwise-backend/pkg/config"
)

type fakeAdmin struct {
	missing map[string]bool
	err     error
	asked   []string
}

func (f *fakeAdmin) GetTopic(_ context.Context, req *pubsubpb.GetTopicRequest) error {
	f.asked = append(f.asked, req.Topic)
	if f.err != nil {
		return f.err
	}
	if f.missing[req.Topic] {
		return status.Error(codes.NotFound, "no topic")
	}
	return nil
}

func TestTopicResourceName(t *testing.T) {
	assert.Equal(t, "projects/tw/topics/payments", TopicResourceName("tw", "payments"))
	assert.Equal(t, "projects/other/topics/x", TopicResourceName("tw", "projects/other/topics/x"))
	assert.Empty(t, TopicResourceName("", "payments"))
	assert.Empty(t, TopicResourceName("tw", "  "))
}

func TestNewClientValidatesInput(t *testing.T) {
	_, err := NewClient(context.Background(), config.GCPConfig{}, []string{"payments"}, nil)
	assert.ErrorIs(t, err, errProjectIDRequired)

	_, err = NewClient(context.Background(), config.GCPConfig{ProjectID: "tw"}, nil, nil)
	assert.ErrorIs(t, err, errNoTopics)
}

func TestPingReportsEveryMissingTopic(t *testing.T) {
	admin := &fakeAdmin{missing: map[string]bool{
		"projects/tw/topics/a": true,
		"projects/tw/topics/c": true,
	}}
	c := &Client{admin: admin, projectID: "tw", topics: []string{"a", "b", "c"}}

	err := c.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `topic "a" does not exist`)
	assert.Contains(t, err.Error(), `topic "c" does not exist`)
	assert.NotContains(t, err.Error(), `"b"`)
	assert.Len(t, admin.asked, 3)
}

func TestPingWrapsTransportErrors(t *testing.T) {
	boom := errors.New("unavailable")
	c := &Client{admin: &fakeAdmin{err: boom}, projectID: "tw", topics: []string{"payments"}}
	assert.ErrorIs(t, c.Ping(context.Background()), boom)

	c = &Client{admin: &fakeAdmin{}, projectID: "tw", topics: []string{"payments"}}
	assert.NoError(t, c.Ping(context.Background()))
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	assert.Nil(t, c.Publisher("payments"))
	assert.NoError(t, c.Close())
	assert.ErrorIs(t, c.Ping(context.Background()), errNotInitialized)
}
