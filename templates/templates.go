package templates

import (
	"fmt"

	"github.com/festivo-org/concierge/models"
)

func New() (models.Templates, error) {
	templates := models.Templates{}

	if template, err := NewTeamInviteTemplate(); err != nil {
		return nil, fmt.Errorf("templates: failure to create team invite template: %s", err)
	} else {
		templates[template.Name()] = template
	}

	if template, err := NewTeamWelcomeTemplate(); err != nil {
		return nil, fmt.Errorf("templates: failure to create team welcome template: %s", err)
	} else {
		templates[template.Name()] = template
	}

	return templates, nil
}
