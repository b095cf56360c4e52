package mail

import "fmt"

// OnboardingMailer delivers the welcome mail after tenant provisioning.
type OnboardingMailer struct{}

// SendOnboarding mails the login URL, API key and capture URL to the new
// tenant owner.
func (OnboardingMailer) SendOnboarding(to, handle, loginURL, apiKey, captureURL string) error {
	subject := fmt.Sprintf("Your FormFox workspace '%s' is ready", handle)
	body := fmt.Sprintf(`<h2>Welcome to FormFox!</h2>
<p>Your workspace <strong>%s</strong> is set up and ready to collect submissions.</p>
<ul>
<li>Login: <a href="%s">%s</a></li>
<li>API key: <code>%s</code></li>
<li>Capture endpoint: <code>%s</code></li>
</ul>
<p>Point your forms at the capture endpoint and authenticate with your API key.</p>`,
		handle, loginURL, loginURL, apiKey, captureURL)

	return SendMail(to, subject, body)
}
