package notify

import (
	"bytes"
	"html/template"
	"strings"
	texttemplate "text/template"
)

type templateSet struct {
	subject *texttemplate.Template
	body    *template.Template
}

type templateData struct {
	Details
	ProjectURL string
	TaskURL    string
	LoginURL   string
}

var templates = map[Kind]templateSet{
	KindProjectAssignment: newTemplateSet(
		"You have been added to the project: {{.ProjectName}}",
		`<h2>Project assignment</h2>
<p>You have been added to the project <strong>{{.ProjectName}}</strong>.</p>
<p>Open the project <a href="{{.ProjectURL}}">here</a>.</p>`),
	KindTaskAssignment: newTemplateSet(
		"New task assigned: {{.TaskName}}",
		`<h2>Task assignment</h2>
<p>A new task in the project {{.ProjectName}} has been assigned to you:</p>
<p><strong>{{.TaskName}}</strong></p>
<p>Open the task <a href="{{.TaskURL}}">here</a>.</p>`),
	KindTaskCompleted: newTemplateSet(
		"Task completed: {{.TaskName}}",
		`<h2>Task completed</h2>
<p>A task in the project {{.ProjectName}} has been marked as completed:</p>
<p><strong>{{.TaskName}}</strong></p>
<p>Completed by: {{.CompletedBy}}</p>`),
	KindProjectCompleted: newTemplateSet(
		"Project completed: {{.ProjectName}}",
		`<h2>Project completed</h2>
<p>The following project has been marked as completed:</p>
<p><strong>{{.ProjectName}}</strong></p>
<p>Congratulations to every member of the team!</p>`),
	KindProjectReopened: newTemplateSet(
		"Project {{.ProjectName}} has been reopened",
		`<h2>Project reopened</h2>
<p>New work was added and the project <strong>{{.ProjectName}}</strong> has been reopened.</p>
<p>Please review the project status and the new assignments.</p>`),
	KindNewCredentials: newTemplateSet(
		"Welcome to the Project Manager - your account details",
		`<h2>Welcome to the Project Manager</h2>
<p>An account has been created for you. Your credentials are:</p>
<ul>
<li><strong>Username:</strong> {{.Username}}</li>
<li><strong>Password:</strong> {{.Password}}</li>
</ul>
<p>Sign in <a href="{{.LoginURL}}">here</a> and change your password after the first login.</p>`),
}

func newTemplateSet(subject, body string) templateSet {
	return templateSet{
		subject: texttemplate.Must(texttemplate.New("subject").Parse(subject)),
		body:    template.Must(template.New("body").Parse(body)),
	}
}

func render(kind Kind, to []string, serverURL string, details Details) (Message, error) {
	set, ok := templates[kind]
	if !ok {
		return Message{}, errUnknownKind(kind)
	}

	data := templateData{
		Details:  details,
		LoginURL: serverURL + "/login",
	}
	if details.ProjectID != "" {
		data.ProjectURL = serverURL + "/projects/" + details.ProjectID
	}
	if details.TaskID != "" {
		data.TaskURL = serverURL + "/tasks/" + details.TaskID
	}

	var subject, body bytes.Buffer
	if err := set.subject.Execute(&subject, data); err != nil {
		return Message{}, err
	}
	if err := set.body.Execute(&body, data); err != nil {
		return Message{}, err
	}

	return Message{
		Kind: kind,
		To:   to,
		// Subjects are headers: strip line breaks so user input cannot inject headers.
		Subject: strings.NewReplacer("\r", " ", "\n", " ").Replace(subject.String()),
		HTML:    body.String(),
	}, nil
}
