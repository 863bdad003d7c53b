package models

import (
	"bytes"
	"html/template"

	"github.com/pkg/errors"
)

type (
	TemplateName string

	Templates map[TemplateName]Template

	// Template produces the subject and body of an outbound email.
	Template interface {
		Name() TemplateName
		Execute(content interface{}) (string, string, error)
	}

	// PrecompiledTemplate parses its subject and body once at startup.
	PrecompiledTemplate struct {
		name            TemplateName
		subjectTemplate *template.Template
		bodyTemplate    *template.Template
	}
)

const (
	TemplateNameUndefined   TemplateName = ""
	TemplateNameTeamInvite  TemplateName = "team_invite"
	TemplateNameTeamWelcome TemplateName = "team_welcome"
)

func NewPrecompiledTemplate(name TemplateName, subject string, body string) (*PrecompiledTemplate, error) {
	subjectTemplate, err := template.New(string(name) + "_subject").Parse(subject)
	if err != nil {
		return nil, errors.Wrapf(err, "compiling subject template %q", name)
	}

	bodyTemplate, err := template.New(string(name) + "_body").Parse(body)
	if err != nil {
		return nil, errors.Wrapf(err, "compiling body template %q", name)
	}

	return &PrecompiledTemplate{
		name:            name,
		subjectTemplate: subjectTemplate,
		bodyTemplate:    bodyTemplate,
	}, nil
}

func (p *PrecompiledTemplate) Name() TemplateName {
	return p.name
}

func (p *PrecompiledTemplate) Execute(content interface{}) (string, string, error) {
	var subject bytes.Buffer
	if err := p.subjectTemplate.Execute(&subject, content); err != nil {
		return "", "", errors.Wrapf(err, "executing subject template %q", p.name)
	}

	var body bytes.Buffer
	if err := p.bodyTemplate.Execute(&body, content); err != nil {
		return "", "", errors.Wrapf(err, "executing body template %q", p.name)
	}

	return subject.String(), body.String(), nil
}
