package service

import (
	"bytes"
	"html/template"

	"sst_backend/internal/model"
)

// HTMLCertificateRenderer produces a self-contained HTML certificate. A PDF
// renderer can replace it behind the same interface without touching the
// issuing flow.
type HTMLCertificateRenderer struct {
	tmpl *template.Template
}

const certificateTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Certificate {{.Number}}</title></head>
<body style="font-family: Georgia, serif; text-align: center; padding: 60px;">
  <h1>Certificate of Completion</h1>
  <p>This certifies that</p>
  <h2>{{.FullName}}</h2>
  <p>has successfully completed the safety training course</p>
  <h3>{{.CourseTitle}}</h3>
  <p>with a score of {{printf "%.1f" .Score}}%</p>
  <p>Issued on {{.IssueDate}}</p>
  <p style="font-size: small; color: #666;">
    Certificate No. {{.Number}} &middot; Verification code {{.VerificationCode}}
  </p>
</body>
</html>`

func NewHTMLCertificateRenderer() (*HTMLCertificateRenderer, error) {
	tmpl, err := template.New("certificate").Parse(certificateTemplate)
	if err != nil {
		return nil, err
	}
	return &HTMLCertificateRenderer{tmpl: tmpl}, nil
}

func (r *HTMLCertificateRenderer) Render(certificate *model.Certificate, user *model.User, course *model.Course) ([]byte, string, error) {
	var buf bytes.Buffer
	err := r.tmpl.Execute(&buf, map[string]interface{}{
		"Number":           certificate.CertificateNumber,
		"FullName":         user.FullName(),
		"CourseTitle":      course.Title,
		"Score":            certificate.ScoreAchieved,
		"IssueDate":        certificate.IssueDate.Format("January 2, 2006"),
		"VerificationCode": certificate.VerificationCode,
	})
	if err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "text/html", nil
}
