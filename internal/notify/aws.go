package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SESAPI is the subset of the SES client used here.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SNSAPI is the subset of the SNS client used here.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// EmailNotifier sends through SES.
type EmailNotifier struct {
	client SESAPI
	from   string
}

func NewEmailNotifier(client SESAPI, from string) *EmailNotifier {
	return &EmailNotifier{client: client, from: from}
}

func (e *EmailNotifier) Notify(ctx context.Context, n Notification) error {
	if n.To.Email == "" {
		return nil
	}
	_, err := e.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &sestypes.Destination{ToAddresses: []string{n.To.Email}},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(n.Subject), Charset: aws.String("UTF-8")},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(n.Body), Charset: aws.String("UTF-8")},
			},
		},
		Source: aws.String(e.from),
	})
	if err != nil {
		return fmt.Errorf("notify: ses send: %w", err)
	}
	return nil
}

// SMSNotifier sends through SNS direct-to-phone publish.
type SMSNotifier struct {
	client   SNSAPI
	senderID string
}

func NewSMSNotifier(client SNSAPI, senderID string) *SMSNotifier {
	return &SMSNotifier{client: client, senderID: senderID}
}

func (s *SMSNotifier) Notify(ctx context.Context, n Notification) error {
	if n.To.Phone == "" {
		return nil
	}
	input := &sns.PublishInput{
		PhoneNumber: aws.String(n.To.Phone),
		Message:     aws.String(n.Body),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
		},
	}
	if s.senderID != "" {
		input.MessageAttributes["AWS.SNS.SMS.SenderID"] = snstypes.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.senderID),
		}
	}
	if _, err := s.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("notify: sns publish: %w", err)
	}
	return nil
}

// AWSOptions selects which AWS channels are enabled.
type AWSOptions struct {
	Region      string
	SESEnabled  bool
	FromEmail   string
	SNSEnabled  bool
	SNSSenderID string
}

// NewAWS builds a Notifier from the enabled channels, or a LogNotifier when
// none are enabled.
func NewAWS(ctx context.Context, opts AWSOptions) (Notifier, error) {
	if !opts.SESEnabled && !opts.SNSEnabled {
		return LogNotifier{}, nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("notify: load aws config: %w", err)
	}
	var m Multi
	if opts.SESEnabled {
		m = append(m, NewEmailNotifier(ses.NewFromConfig(cfg), opts.FromEmail))
	}
	if opts.SNSEnabled {
		m = append(m, NewSMSNotifier(sns.NewFromConfig(cfg), opts.SNSSenderID))
	}
	return m, nil
}
