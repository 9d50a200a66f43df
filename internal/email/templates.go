package email

import (
	"bytes"
	"fmt"
	"html/template"
)

const baseStyle = `
        body {
            font-family: Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
        }
        .header {
            background-color: #4F46E5;
            color: white;
            padding: 20px;
            text-align: center;
            border-radius: 5px 5px 0 0;
        }
        .content {
            background-color: #f9f9f9;
            padding: 30px;
            border-radius: 0 0 5px 5px;
        }
        .code {
            font-size: 32px;
            font-weight: bold;
            letter-spacing: 6px;
            color: #4F46E5;
            text-align: center;
            margin: 24px 0;
        }
        .button {
            display: inline-block;
            background-color: #4F46E5;
            color: white !important;
            padding: 12px 30px;
            text-decoration: none;
            border-radius: 5px;
            margin: 20px 0;
        }
        .footer {
            margin-top: 30px;
            font-size: 12px;
            color: #666;
            text-align: center;
        }
`

var verificationTmpl = template.Must(template.New("verification").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>` + baseStyle + `</style>
</head>
<body>
    <div class="header">
        <h1>Verify Your Email</h1>
    </div>
    <div class="content">
        <p>Thank you for signing up! Enter this code to verify your email address:</p>

        <div class="code">{{.Code}}</div>

        <p>If you didn't create an account, you can safely ignore this email.</p>
    </div>
    <div class="footer">
        <p>This code will expire in 24 hours.</p>
    </div>
</body>
</html>
`))

var welcomeTmpl = template.Must(template.New("welcome").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>` + baseStyle + `</style>
</head>
<body>
    <div class="header">
        <h1>Welcome, {{.Username}}!</h1>
    </div>
    <div class="content">
        <p>Your email is verified and your account is active.</p>
        <p>We're glad to have you on board.</p>
    </div>
    <div class="footer">
        <p>If you have questions, reach out to our support team.</p>
    </div>
</body>
</html>
`))

var passwordResetTmpl = template.Must(template.New("passwordReset").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>` + baseStyle + `</style>
</head>
<body>
    <div class="header">
        <h1>Password Reset Request</h1>
    </div>
    <div class="content">
        <p>You requested to reset your password. Click the button below to create a new password.</p>

        <a href="{{.ResetLink}}" class="button" style="color: white !important;">Reset Password</a>

        <p>Or copy and paste this link into your browser:</p>
        <p style="word-break: break-all; color: #4F46E5;">{{.ResetLink}}</p>

        <p style="margin-top: 30px;">If you didn't request a password reset, you can safely ignore this email. Your password will remain unchanged.</p>
    </div>
    <div class="footer">
        <p>This link will expire in 1 hour.</p>
    </div>
</body>
</html>
`))

var resetSuccessTmpl = template.Must(template.New("resetSuccess").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>` + baseStyle + `</style>
</head>
<body>
    <div class="header">
        <h1>Password Reset Successful</h1>
    </div>
    <div class="content">
        <p>Your password has been changed successfully.</p>
        <p>If you did not perform this change, contact support immediately.</p>
    </div>
    <div class="footer">
        <p>For security, sessions opened before the reset may need to sign in again.</p>
    </div>
</body>
</html>
`))

func renderVerificationEmail(code string) (string, error) {
	return render(verificationTmpl, struct{ Code string }{code})
}

func renderWelcomeEmail(username string) (string, error) {
	return render(welcomeTmpl, struct{ Username string }{username})
}

func renderPasswordResetEmail(resetLink string) (string, error) {
	return render(passwordResetTmpl, struct{ ResetLink string }{resetLink})
}

func renderResetSuccessEmail() (string, error) {
	return render(resetSuccessTmpl, nil)
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}
