package services

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/clearclose/closing-service/internal/config"
	"github.com/clearclose/closing-service/internal/constants"
	"github.com/clearclose/closing-service/internal/utils"
)

// NotificationService is the best-effort delivery sink for recalculation
// and risk events. Failures are logged, never propagated: a missed email
// must not fail a closing calculation.
type NotificationService struct {
	cfg      *config.Config
	sgClient *sendgrid.Client
	twClient *twilio.RestClient
}

func NewNotificationService(cfg *config.Config, sgClient *sendgrid.Client, twClient *twilio.RestClient) *NotificationService {
	return &NotificationService{cfg: cfg, sgClient: sgClient, twClient: twClient}
}

// NotifyRecalcComplete tells the requester their unit's figures changed.
func (n *NotificationService) NotifyRecalcComplete(toName, toEmail, unitNumber string) {
	body := fmt.Sprintf(
		"The statement of adjustments and closing analysis for unit %s have been recalculated. Log in to review the updated figures.",
		unitNumber,
	)
	n.sendEmail(toName, toEmail, constants.EmailSubjectRecalcComplete, body)
}

// NotifyRecalcFailed alerts the operations team that a background
// recalculation died. This one goes to the team, not the requester.
func (n *NotificationService) NotifyRecalcFailed(unitNumber string, cause error) {
	subject := fmt.Sprintf(constants.EmailSubjectRecalcFailed, unitNumber)
	body := fmt.Sprintf(
		"A background recalculation for unit %s failed and needs manual attention.\n\nError: %v",
		unitNumber, cause,
	)
	n.sendEmail(constants.OperationsTeamName, constants.OperationsTeamEmail, subject, body)
}

// NotifyHighRisk pages the operations team when a unit lands in the
// highest-risk tier. SMS first, email as the durable record.
func (n *NotificationService) NotifyHighRisk(unitNumber string, phone string, reasoning string) {
	subject := fmt.Sprintf(constants.EmailSubjectHighRiskUnit, unitNumber)

	if n.twClient != nil && phone != "" {
		params := &twilioApi.CreateMessageParams{}
		params.SetTo(phone)
		params.SetFrom(n.cfg.TwilioFromNumber)
		params.SetBody(subject + " :: " + reasoning)
		if _, smsErr := n.twClient.Api.CreateMessage(params); smsErr != nil {
			utils.Logger.WithError(smsErr).Warnf("Failed to send high-risk SMS for unit %s", unitNumber)
		}
	} else {
		utils.Logger.Warnf("Twilio client is nil, skipping high-risk SMS for unit %s", unitNumber)
	}

	body := fmt.Sprintf(
		"Unit %s has been flagged as a high-risk closing.\n\n%s",
		unitNumber, reasoning,
	)
	n.sendEmail(constants.OperationsTeamName, constants.OperationsTeamEmail, subject, body)
}

func (n *NotificationService) sendEmail(toName, toEmail, subject, plainTextBody string) {
	if n.sgClient == nil {
		utils.Logger.Warnf("SendGrid client is nil, skipping email %q to %s", subject, toEmail)
		return
	}
	from := mail.NewEmail(constants.OperationsTeamName, n.cfg.LDFlag_SendgridFromEmail)
	to := mail.NewEmail(toName, toEmail)
	msg := mail.NewSingleEmail(from, subject, to, plainTextBody, "<pre>"+plainTextBody+"</pre>")
	msg.TrackingSettings = &mail.TrackingSettings{
		ClickTracking: &mail.ClickTrackingSetting{
			Enable: utils.Ptr(false),
		},
	}
	if n.cfg.LDFlag_SendgridSandboxMode {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}
	if _, sgErr := n.sgClient.Send(msg); sgErr != nil {
		utils.Logger.WithError(sgErr).Warnf("Email send failure: %q to %s", subject, toEmail)
	}
}
