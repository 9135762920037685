package email

import (
	"bytes"
	"context"
	"fmt"
	htmltpl "html/template"
	texttpl "text/template"
	"time"
)

// ResultNotice son los datos del aviso de nueva respuesta.
type ResultNotice struct {
	SurveyID    string
	SurveyTitle string
	ResultID    string
	SubmittedAt time.Time
	// ResultsURL apunta a la página de resultados del frontend.
	ResultsURL string
}

const noticeSubject = "问卷「%s」收到新的答卷"

var noticeText = texttpl.Must(texttpl.New("text").Parse(`您的问卷「{{.SurveyTitle}}」收到了一份新的答卷。

答卷编号: {{.ResultID}}
提交时间: {{.SubmittedAt.Format "2006-01-02 15:04:05 MST"}}

查看结果: {{.ResultsURL}}
`))

var noticeHTML = htmltpl.Must(htmltpl.New("html").Parse(`<p>您的问卷「<strong>{{.SurveyTitle}}</strong>」收到了一份新的答卷。</p>
<ul>
<li>答卷编号: {{.ResultID}}</li>
<li>提交时间: {{.SubmittedAt.Format "2006-01-02 15:04:05 MST"}}</li>
</ul>
<p><a href="{{.ResultsURL}}">查看结果</a></p>
`))

// Notifier arma y envía los avisos a dueños de encuestas.
type Notifier struct {
	Sender Sender
}

// RenderResultNotice devuelve asunto, html y texto del aviso.
func RenderResultNotice(n ResultNotice) (subject, html, text string, err error) {
	if n.SurveyTitle == "" {
		n.SurveyTitle = n.SurveyID
	}
	var hb, tb bytes.Buffer
	if err := noticeHTML.Execute(&hb, n); err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	if err := noticeText.Execute(&tb, n); err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	return fmt.Sprintf(noticeSubject, n.SurveyTitle), hb.String(), tb.String(), nil
}

// NotifyResult envía el aviso a "to".
func (n *Notifier) NotifyResult(ctx context.Context, to string, notice ResultNotice) error {
	subject, html, text, err := RenderResultNotice(notice)
	if err != nil {
		return err
	}
	return n.Sender.Send(ctx, to, subject, html, text)
}
