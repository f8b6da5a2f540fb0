package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"pharmapos/internal/notify"
	"pharmapos/internal/port"
)

type sesNotifier struct {
	client      *sesv2.Client
	fromAddress string
	recipients  []string
}

// NewSESNotifier creates a ComplianceNotifier that emails review notices via SES.
func NewSESNotifier(ctx context.Context, region, fromAddress string, recipients []string) (port.ComplianceNotifier, error) {
	if len(recipients) == 0 {
		return nil, fmt.Errorf("ses notifier needs at least one recipient")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return &sesNotifier{
		client:      sesv2.NewFromConfig(cfg),
		fromAddress: fromAddress,
		recipients:  recipients,
	}, nil
}

func (s *sesNotifier) NotifyRateReview(ctx context.Context, notice port.ReviewNotice) error {
	if len(notice.Warnings) == 0 {
		return nil
	}
	subject, textBody := notify.Render(notice)
	from := fmt.Sprintf("PharmaPOS Compliance <%s>", s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: s.recipients,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}
