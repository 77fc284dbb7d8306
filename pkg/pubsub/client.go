package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"go.uber.org/multierr"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/trackwise-backend/pkg/config"
	"github.com/angelmondragon/trackwise-backend/pkg/logger"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errNoTopics          = errors.New("at least one topic is required")
	errNotInitialized    = errors.New("pubsub client not initialized")
)

// topicGetter is the slice of the topic admin API used for existence checks.
type topicGetter interface {
	GetTopic(ctx context.Context, req *pubsubpb.GetTopicRequest) error
}

type adminGetter struct{ client *pubsub.Client }

func (a adminGetter) GetTopic(ctx context.Context, req *pubsubpb.GetTopicRequest) error {
	_, err := a.client.TopicAdminClient.GetTopic(ctx, req)
	return err
}

// Client publishes outbox events. Every topic it serves is checked at startup
// and on Ping.
type Client struct {
	client    *pubsub.Client
	admin     topicGetter
	projectID string
	topics    []string
}

// NewClient connects to Pub/Sub for gcp.ProjectID and fails when any of the
// given topics is missing.
func NewClient(ctx context.Context, gcp config.GCPConfig, topics []string, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	if projectID == "" {
		return nil, errProjectIDRequired
	}
	if len(topics) == 0 {
		return nil, errNoTopics
	}

	raw, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}
	c := &Client{
		client:    raw,
		admin:     adminGetter{client: raw},
		projectID: projectID,
		topics:    append([]string(nil), topics...),
	}
	if err := c.Ping(ctx); err != nil {
		_ = raw.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "topics", c.topics), "pubsub client initialized")
	}
	return c, nil
}

// Ping verifies that every configured topic exists. All missing topics are
// reported together.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.admin == nil {
		return errNotInitialized
	}
	var errs error
	for _, topic := range c.topics {
		errs = multierr.Append(errs, c.checkTopic(ctx, topic))
	}
	return errs
}

func (c *Client) checkTopic(ctx context.Context, topic string) error {
	name := TopicResourceName(c.projectID, topic)
	if name == "" {
		return fmt.Errorf("invalid topic %q", topic)
	}
	err := c.admin.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: name})
	switch {
	case err == nil:
		return nil
	case status.Code(err) == codes.NotFound:
		return fmt.Errorf("topic %q does not exist", topic)
	default:
		return fmt.Errorf("checking topic %q: %w", topic, err)
	}
}

// Publisher returns a publisher for a topic ID or full resource name.
func (c *Client) Publisher(topic string) *pubsub.Publisher {
	if c == nil || c.client == nil {
		return nil
	}
	name := TopicResourceName(c.projectID, topic)
	if name == "" {
		return nil
	}
	return c.client.Publisher(name)
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// TopicResourceName expands a topic ID to projects/<p>/topics/<id>. Full
// resource names pass through.
func TopicResourceName(projectID, topic string) string {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return ""
	}
	if strings.HasPrefix(topic, "projects/") && strings.Contains(topic, "/topics/") {
		return topic
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return ""
	}
	return "projects/" + projectID + "/topics/" + topic
}
