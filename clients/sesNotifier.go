package clients

import (
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/endpoints"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	// CharSet The character encoding for the email.
	CharSet = "UTF-8"

	// DefaultTextMessage will be sent to non-HTML email clients that receive our messages
	DefaultTextMessage = "You need an HTML client to read this email."
)

type (
	// SesNotifier contains all information needed to send Amazon SES messages
	SesNotifier struct {
		Config *SesNotifierConfig
		SES    *ses.SES
		logger *zap.SugaredLogger
	}

	// SesNotifierConfig contains the static configuration for the Amazon SES service
	// Credentials come from the environment and are not passed in via configuration variables.
	SesNotifierConfig struct {
		From             string `split_words:"true" default:"noreply@festivo.app"`
		Region           string `default:"us-west-2"`
		Endpoint         string `default:""`
		ConfigurationSet string `split_words:"true" default:""`
	}
)

//NewSesNotifier creates a new Amazon SES notifier
func NewSesNotifier(cfg *SesNotifierConfig, logger *zap.SugaredLogger) (*SesNotifier, error) {

	// If an endpoint is specified in config, AWS' default is overridden. This
	// is how local stacks point at an SES stand-in.
	customResolver := func(service, region string, optFns ...func(*endpoints.Options)) (endpoints.ResolvedEndpoint, error) {
		if service == endpoints.EmailServiceID && cfg.Endpoint != "" {
			return endpoints.ResolvedEndpoint{
				URL:           cfg.Endpoint,
				SigningRegion: "custom-signing-region",
			}, nil
		}

		return endpoints.DefaultResolver().EndpointFor(service, region, optFns...)
	}

	sess := session.Must(session.NewSession(&aws.Config{
		Region:           aws.String(cfg.Region),
		EndpointResolver: endpoints.ResolverFunc(customResolver),
	}))

	// Verify whether we have actual credentials (for information tracing).
	// Validity of found credentials is not checked at this stage.
	creds, err := sess.Config.Credentials.Get()
	if err != nil {
		logger.With(zap.Error(err)).Warn("no AWS credentials were found, email will not be sent")
	} else {
		logger.Infof("AWS credentials found with provider %s", creds.ProviderName)
	}

	return &SesNotifier{
		Config: cfg,
		SES:    ses.New(sess),
		logger: logger,
	}, nil
}

// Send a message to a list of recipients with a given subject
func (c *SesNotifier) Send(to []string, subject string, msg string) (int, string) {
	var toAwsAddress = make([]*string, len(to))
	for i, x := range to {
		toAwsAddress[i] = aws.String(x)
	}

	var confSetName *string
	if c.Config.ConfigurationSet != "" {
		confSetName = aws.String(c.Config.ConfigurationSet)
	}

	input := &ses.SendEmailInput{
		Destination: &ses.Destination{
			CcAddresses: []*string{},
			ToAddresses: toAwsAddress,
		},
		Message: &ses.Message{
			Body: &ses.Body{
				Html: &ses.Content{
					Charset: aws.String(CharSet),
					Data:    aws.String(msg),
				},
				Text: &ses.Content{
					Charset: aws.String(CharSet),
					Data:    aws.String(DefaultTextMessage),
				},
			},
			Subject: &ses.Content{
				Charset: aws.String(CharSet),
				Data:    aws.String(subject),
			},
		},
		Source:               aws.String(c.Config.From),
		ConfigurationSetName: confSetName,
	}

	// Attempt to send the email.
	result, err := c.SES.SendEmail(input)

	// Return error messages if they occur. They are traced in the caller function
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok {
			return http.StatusInternalServerError, aerr.Error()
		}
		return http.StatusInternalServerError, err.Error()
	}
	c.logger.Debugf("SES email sent: %s", subject)
	return http.StatusOK, result.String()
}

func sesNotifierConfigProvider() (SesNotifierConfig, error) {
	var config SesNotifierConfig
	if err := envconfig.Process("ses", &config); err != nil {
		return SesNotifierConfig{}, err
	}
	return config, nil
}

func sesNotifierProvider(config SesNotifierConfig, logger *zap.SugaredLogger) (Notifier, error) {
	return NewSesNotifier(&config, logger)
}

var SesModule = fx.Options(
	fx.Provide(sesNotifierConfigProvider),
	fx.Provide(sesNotifierProvider),
)
