package sns

import (
	"context"
	"encoding/json"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/edutrack/verify-api/internal/config"
)

// EventPublisher announces verification outcomes to downstream systems.
type EventPublisher interface {
	PublishVerified(ctx context.Context, userID, email string) error
}

type publisher struct {
	client   *sns.Client
	topicARN string
}

type verifiedEvent struct {
	Event      string `json:"event"`
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	VerifiedAt string `json:"verified_at"`
}

func NewPublisher(cfg *config.Config) (EventPublisher, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &publisher{client: sns.NewFromConfig(awsCfg), topicARN: cfg.SNSTopicARN}, nil
}

func (p *publisher) PublishVerified(ctx context.Context, userID, email string) error {
	body, err := json.Marshal(verifiedEvent{
		Event:      "registration.verified",
		UserID:     userID,
		Email:      email,
		VerifiedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	msg := string(body)
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: &p.topicARN,
		Message:  &msg,
	})
	return err
}
