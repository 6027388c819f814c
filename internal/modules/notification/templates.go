package notification

import "html/template"

const layoutOpen = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`
const layoutClose = `</div>`

var templates = template.Must(template.New("mail").Parse(`
{{define "welcome"}}` + layoutOpen + `
<h2 style="color: #1a237e;">Welcome to Thailand eVisa Portal!</h2>
<p>Dear {{.Name}},</p>
<p>Thank you for registering with Thailand eVisa Portal. Your account has been created successfully.</p>
<p>You can now:</p>
<ul>
<li>Apply for Thailand visa online</li>
<li>Track your application status</li>
<li>Upload required documents</li>
<li>Make payments securely</li>
</ul>
{{if .ClientURL}}<p><a href="{{.ClientURL}}">Open the portal</a></p>{{end}}
<p>If you have any questions, please contact our support team.</p>
<br>
<p>Best regards,<br>Thailand eVisa Team</p>
` + layoutClose + `{{end}}

{{define "submitted"}}` + layoutOpen + `
<h2 style="color: #1a237e;">Application Submitted Successfully!</h2>
<p>Dear {{.Name}},</p>
<p>Your visa application has been submitted successfully.</p>
<div style="background: #f8f9fa; padding: 20px; border-radius: 10px; margin: 20px 0;">
<p><strong>Booking Number:</strong> {{.BookingNumber}}</p>
<p><strong>Visa Type:</strong> {{.VisaType}}</p>
<p><strong>Submitted Date:</strong> {{.Date}}</p>
</div>
<p>You can track your application status using your booking number.</p>
<p>Processing time: 3-5 business days</p>
<br>
<p>Best regards,<br>Thailand eVisa Team</p>
` + layoutClose + `{{end}}

{{define "status"}}` + layoutOpen + `
<h2 style="color: #1a237e;">Application Status Update</h2>
<p>Dear {{.Name}},</p>
<p>Your visa application status has been updated.</p>
<div style="background: #f8f9fa; padding: 20px; border-radius: 10px; margin: 20px 0;">
<p><strong>Booking Number:</strong> {{.BookingNumber}}</p>
<p><strong>New Status:</strong> <span style="color: #27ae60; font-weight: bold;">{{.Status}}</span></p>
<p><strong>Updated Date:</strong> {{.Date}}</p>
</div>
<p>Please login to your account to view more details.</p>
<br>
<p>Best regards,<br>Thailand eVisa Team</p>
` + layoutClose + `{{end}}

{{define "approved"}}` + layoutOpen + `
<h2 style="color: #27ae60;">Visa Application Approved!</h2>
<p>Dear {{.Name}},</p>
<p>Congratulations! Your Thailand visa application has been approved.</p>
<div style="background: #d4edda; padding: 20px; border-radius: 10px; margin: 20px 0; border-left: 4px solid #27ae60;">
<p><strong>Booking Number:</strong> {{.BookingNumber}}</p>
<p><strong>Visa Type:</strong> {{.VisaType}}</p>
<p><strong>Approval Date:</strong> {{.Date}}</p>
</div>
<p>Please login to your account to download your visa certificate.</p>
<p><strong>Important:</strong> Please carry a printed copy of your eVisa when traveling to Thailand.</p>
<br>
<p>Have a wonderful trip!<br>Thailand eVisa Team</p>
` + layoutClose + `{{end}}

{{define "payment"}}` + layoutOpen + `
<h2 style="color: #1a237e;">Payment Confirmation</h2>
<p>Dear {{.Name}},</p>
<p>Your payment has been received successfully.</p>
<div style="background: #f8f9fa; padding: 20px; border-radius: 10px; margin: 20px 0;">
<p><strong>Booking Number:</strong> {{.BookingNumber}}</p>
<p><strong>Transaction ID:</strong> {{.TransactionID}}</p>
<p><strong>Amount Paid:</strong> ${{.Amount}} {{.Currency}}</p>
<p><strong>Payment Date:</strong> {{.Date}}</p>
</div>
<p>Your application is now being processed.</p>
<br>
<p>Best regards,<br>Thailand eVisa Team</p>
` + layoutClose + `{{end}}
`))

// mailData is the view model shared by all templates.
type mailData struct {
	Name          string
	ClientURL     string
	BookingNumber string
	VisaType      string
	Status        string
	Date          string
	TransactionID string
	Amount        string
	Currency      string
}
