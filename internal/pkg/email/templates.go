package email

// Template names
const (
	TemplateVerification  = "verification"
	TemplatePasswordReset = "password_reset"
)

// BaseTemplate wraps every HTML body.
const BaseTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { margin: 0; padding: 0; font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; background: #f4f6f8; color: #1f2933; }
        .container { max-width: 560px; margin: 0 auto; padding: 32px 16px; }
        .card { background: #ffffff; border-radius: 12px; padding: 28px; border: 1px solid #e4e7eb; }
        .logo { text-align: center; color: #0b7a4b; font-size: 24px; font-weight: 700; margin-bottom: 20px; }
        .code { font-size: 32px; letter-spacing: 8px; font-weight: 700; text-align: center; margin: 24px 0; }
        .btn { display: inline-block; background: #0b7a4b; color: #ffffff !important; text-decoration: none; padding: 12px 24px; border-radius: 8px; font-weight: 600; }
        .footer { text-align: center; margin-top: 24px; color: #7b8794; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="card">
            <div class="logo">ParkSpot</div>
            {{.Content}}
        </div>
        <div class="footer">You received this email because an account was registered with this address.</div>
    </div>
</body>
</html>`

var htmlTemplates = map[string]string{
	TemplateVerification: `
<h2>Verify your email</h2>
<p>Hi {{.UserName}}, use this code to confirm your ParkSpot account:</p>
<div class="code">{{.Code}}</div>
<p>The code expires in {{.ExpiresInMinutes}} minutes.</p>`,

	TemplatePasswordReset: `
<h2>Reset your password</h2>
<p>Hi {{.UserName}}, we received a request to reset your password.</p>
<p style="text-align:center"><a class="btn" href="{{.ResetURL}}">Choose a new password</a></p>
<p>The link expires in {{.ExpiresInMinutes}} minutes. If you did not ask for this, ignore this email.</p>`,
}

var textTemplates = map[string]string{
	TemplateVerification:  "Hi {{.UserName}}, your ParkSpot verification code is {{.Code}}. It expires in {{.ExpiresInMinutes}} minutes.",
	TemplatePasswordReset: "Hi {{.UserName}}, reset your ParkSpot password here: {{.ResetURL}} (expires in {{.ExpiresInMinutes}} minutes).",
}
