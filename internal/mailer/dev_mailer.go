package mailer

import (
	"fmt"

	"github.com/booknest/booknest-server/pkg/logger"
)

type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendOTPEmail(toEmail, toName, code string) error {
	logger.Info("[DEV MAIL] Verification code email",
		"to", toEmail,
		"name", toName,
		"code", code,
	)

	fmt.Printf("\n"+
		"=================================================================\n"+
		"VERIFICATION CODE EMAIL (DEV MODE)\n"+
		"=================================================================\n"+
		"To: %s (%s)\n"+
		"Subject: Your Book-Nest verification code\n"+
		"\n"+
		"Code: %s\n"+
		"Expires in 5 minutes.\n"+
		"=================================================================\n\n",
		toEmail, toName, code)

	return nil
}
