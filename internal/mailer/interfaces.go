package mailer

type Service interface {
	SendOTPEmail(toEmail, toName, code string) error
}
