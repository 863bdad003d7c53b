package templates

import "github.com/festivo-org/concierge/models"

const _TeamInviteSubjectTemplate string = `{{ .OwnerEmail }} invited you to their Festivo team`
const _TeamInviteBodyTemplate string = `
<html>
  <head>
    <meta name='viewport' content='width=device-width'/>
    <meta http-equiv='Content-Type' content='text/html; charset=UTF-8'/>
    <title>You have been invited to a Festivo team</title>
  </head>

  <body style='background-color: #FFFFFF'>

    <div class='container' style='background-color:#F5F5F5; padding:20px; margin:0 auto; max-width:500px'>
      <div align='center' style='padding:10px; margin:0;'>
        <a href='{{ .WebURL }}/'><img width='75' height='75' src='{{ .AssetURL }}/img/festivo-logo.png' /></a>
      </div>

      <div align='center'>
        <p style='font-family: Helvetica Neue, Helvetica, sans-serif; font-weight:300; font-size: 14px; color:#000; line-height:1.1; padding:25px 0 15px; margin:0;'>Hey there!</p>
        <p style='font-family: Helvetica Neue, Helvetica, sans-serif; font-weight:300; font-size: 14px; color:#000; line-height:1.1; padding:0 0 15px; margin:0;'>{{ .OwnerEmail }} has invited you to join their team on Festivo as {{ if eq .Role "editor" }}an editor{{ else }}a viewer{{ end }}. Click the button below to view the invitation. The invitation is valid until {{ .ExpiresAt }}.</p>
      </div>

      <br>

      <div align='center' style='padding:0;'>
        <a style='background-color:#7C5CFC; font-family: Helvetica Neue, Helvetica, sans-serif; font-weight:400; font-size: 14px; color:#FFFFFF; padding:10px 20px; margin:0; border-radius:20px; text-decoration: none;' href='{{ .InviteURL }}'>View Invitation</a>
      </div>

      <br>

      <div align='center'>
        <p style='font-family: Helvetica Neue, Helvetica, sans-serif; font-weight:300; font-size: 14px; color:#000; line-height:1.1; padding:15px 0 40px; margin:0;'>If you were not expecting this invitation you can safely ignore this email.<br><br>Sincerely,<br>The Festivo Team</p>
      </div>
    </div>

  </body>
</html>
`

func NewTeamInviteTemplate() (models.Template, error) {
	return models.NewPrecompiledTemplate(models.TemplateNameTeamInvite, _TeamInviteSubjectTemplate, _TeamInviteBodyTemplate)
}
