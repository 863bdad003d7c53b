package templates

import (
	"strings"
	"testing"

	"github.com/festivo-org/concierge/models"
)

func Test_New(t *testing.T) {
	templates, err := New()
	if err != nil {
		t.Fatalf("error building templates: %s", err)
	}

	for _, name := range []models.TemplateName{models.TemplateNameTeamInvite, models.TemplateNameTeamWelcome} {
		if _, ok := templates[name]; !ok {
			t.Fatalf("template [%s] should be registered", name)
		}
	}
}

func Test_TeamInviteTemplate(t *testing.T) {
	template, err := NewTeamInviteTemplate()
	if err != nil {
		t.Fatalf("error building template: %s", err)
	}

	subject, body, err := template.Execute(map[string]interface{}{
		"OwnerEmail": "owner@example.org",
		"Role":       "editor",
		"WebURL":     "https://app.festivo.test",
		"AssetURL":   "https://assets.festivo.test",
		"InviteURL":  "https://app.festivo.test/team/invite/some-token",
		"ExpiresAt":  "Mon, 08 Sep 2026",
	})
	if err != nil {
		t.Fatalf("error executing template: %s", err)
	}

	if !strings.Contains(subject, "owner@example.org") {
		t.Fatalf("the subject should name the owner [%s]", subject)
	}
	if !strings.Contains(body, "https://app.festivo.test/team/invite/some-token") {
		t.Fatal("the body should carry the invite deep link")
	}
	if !strings.Contains(body, "an editor") {
		t.Fatal("the body should spell out the offered role")
	}
}

func Test_TeamWelcomeTemplate(t *testing.T) {
	template, err := NewTeamWelcomeTemplate()
	if err != nil {
		t.Fatalf("error building template: %s", err)
	}

	_, body, err := template.Execute(map[string]interface{}{
		"OwnerEmail": "owner@example.org",
		"Role":       "viewer",
		"WebURL":     "https://app.festivo.test",
		"AssetURL":   "https://assets.festivo.test",
	})
	if err != nil {
		t.Fatalf("error executing template: %s", err)
	}

	if !strings.Contains(body, "a viewer") {
		t.Fatal("the body should spell out the granted role")
	}
}
