package services

import (
	"context"
	"errors"
	"os"

	"safehub/models"
	"safehub/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"
)

// AlertData is the message body handed to the dispatcher.
type AlertData struct {
	Type     string        `json:"type"` // "safety_timer" | "sos" | "incident"
	Message  string        `json:"message"`
	Location *models.Point `json:"location,omitempty"`
	Urgency  string        `json:"urgency"` // "high" | "normal"
}

// Notification is one guardian-facing delivery attempt. Email and Phone come
// from the TimerGuardian snapshot; either may be empty. LinkedUserID routes a
// push when the guardian is also a registered user.
type Notification struct {
	UserID       uint // user the alert is about
	LinkedUserID *uint
	Name         string
	Email        string
	Phone        string
	Alert        AlertData
}

// Dispatcher attempts delivery of one notification. Failures are transient
// from the engine's point of view; retry policy lives with the caller or the
// offline queue. This is the seam mocked in tests.
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification) error
}

// SNSDispatcher delivers over SNS SMS, SES email, and SNS mobile push,
// best-effort per channel. One successful channel counts as delivery.
type SNSDispatcher struct {
	sns  *awssns.Client
	push *PushService
}

func NewSNSDispatcher(push *PushService) (*SNSDispatcher, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "eu-west-1"
	}
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SNSDispatcher{sns: awssns.NewFromConfig(cfg), push: push}, nil
}

func (d *SNSDispatcher) Dispatch(ctx context.Context, n Notification) error {
	delivered := false
	var lastErr *DispatchError

	if n.Phone != "" {
		_, err := d.sns.Publish(ctx, &awssns.PublishInput{
			PhoneNumber: aws.String(n.Phone),
			Message:     aws.String(n.Alert.Message),
		})
		if err != nil {
			lastErr = &DispatchError{Channel: "sms", Err: err}
			zap.L().Warn("sms dispatch failed", zap.String("guardian", n.Name), zap.Error(err))
		} else {
			delivered = true
		}
	}

	if n.Email != "" {
		subject := "SafeHub safety alert"
		if n.Alert.Urgency == "high" {
			subject = "URGENT: SafeHub safety alert"
		}
		if err := utils.SendGuardianAlertEmail(n.Email, n.Name, subject, n.Alert.Message); err != nil {
			lastErr = &DispatchError{Channel: "email", Err: err}
		} else {
			delivered = true
		}
	}

	if n.LinkedUserID != nil && d.push != nil {
		// push is fire-and-forget inside PushService; it never fails the batch
		d.push.PushToUser(*n.LinkedUserID, "Safety alert", n.Alert.Message, map[string]string{
			"type":    n.Alert.Type,
			"urgency": n.Alert.Urgency,
		})
	}

	if delivered {
		return nil
	}
	if lastErr != nil {
		return lastErr
	}
	return &DispatchError{Err: errors.New("guardian has no reachable contact channel")}
}
