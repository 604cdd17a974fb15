package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/eringen/folio"
	"github.com/eringen/folio/scaffold"
)

var initDefaults bool

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a new portfolio site",
	Long: `Create folio.yml, content, and a .env with fresh secrets in dir
(default: the current directory). Existing files are never overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initDefaults, "yes", "y", false, "accept defaults without prompting")
}

// siteAnswers is what the init wizard collects.
type siteAnswers struct {
	Name          string
	Owner         string
	Headline      string
	Email         string
	Domain        string
	AdminPassword string
	Sink          string
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	for _, name := range []string{"folio.yml", ".env"} {
		if _, err := os.Stat(filepath.Join(abs, name)); err == nil {
			return fmt.Errorf("%s already exists in %s", name, dir)
		}
	}

	answers := defaultAnswers(filepath.Base(abs))
	if !initDefaults {
		if answers, err = askSite(answers); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Creating folio site in %s\n\n", dir)

	created, err := scaffold.Write(abs, scaffold.Data{
		Brand:    answers.Name,
		Owner:    answers.Owner,
		Headline: answers.Headline,
		Email:    answers.Email,
		Domain:   answers.Domain,
	})
	for _, f := range created {
		fmt.Fprintf(out, "  created %s\n", f)
	}
	if err != nil {
		return err
	}

	cfg := folio.SiteConfig{
		Name:   answers.Name,
		URL:    "https://" + answers.Domain,
		Author: answers.Owner,
		Contact: folio.ContactConfig{
			Sink: answers.Sink,
		},
	}
	if err := cfg.Save(filepath.Join(abs, "folio.yml")); err != nil {
		return err
	}
	fmt.Fprintln(out, "  created folio.yml")

	env := map[string]string{}
	if answers.AdminPassword != "" {
		secret, err := randomSecret()
		if err != nil {
			return err
		}
		env[folio.EnvPrefix+"ADMIN_PASSWORD"] = answers.AdminPassword
		env[folio.EnvPrefix+"SESSION_SECRET"] = secret
	}
	if err := godotenv.Write(env, filepath.Join(abs, ".env")); err != nil {
		return fmt.Errorf("write .env: %w", err)
	}
	fmt.Fprintln(out, "  created .env")

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Done! Next steps:")
	fmt.Fprintln(out)
	if dir != "." {
		fmt.Fprintf(out, "  cd %s\n", dir)
	}
	fmt.Fprintln(out, "  folio serve --watch")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Edit content/content.yml and content/projects/*.md; the page reloads them live.")
	return nil
}

// defaultAnswers derives a site from the directory name: "jane-doe" becomes
// "Jane Doe".
func defaultAnswers(dirName string) siteAnswers {
	title := cases.Title(language.English).String(strings.NewReplacer("-", " ", "_", " ").Replace(dirName))
	if strings.TrimSpace(title) == "" || title == "." {
		title = "My Portfolio"
	}
	return siteAnswers{
		Name:     title,
		Owner:    title,
		Headline: "Creative Developer crafting immersive web experiences",
		Domain:   "example.com",
		Sink:     folio.SinkInbox,
	}
}

func askSite(a siteAnswers) (siteAnswers, error) {
	var err error
	if a.Name, err = ask("Site name", a.Name, required); err != nil {
		return a, err
	}
	if a.Owner, err = ask("Your name", a.Name, required); err != nil {
		return a, err
	}
	if a.Headline, err = ask("Headline", a.Headline, required); err != nil {
		return a, err
	}
	if a.Email, err = ask("Contact email (optional)", "", optionalEmail); err != nil {
		return a, err
	}
	if a.Domain, err = ask("Domain", a.Domain, required); err != nil {
		return a, err
	}

	sinkPrompt := promptui.Select{
		Label: "Where should contact messages go",
		Items: []string{
			folio.SinkInbox + "   - stored in the admin inbox",
			folio.SinkSMTP + "    - emailed (set FOLIO_CONTACT__SMTP_* in .env)",
			folio.SinkWebhook + " - posted as JSON (set FOLIO_CONTACT__WEBHOOK_URL)",
			folio.SinkDiscard + " - dropped",
		},
	}
	idx, _, err := sinkPrompt.Run()
	if err != nil {
		return a, fmt.Errorf("contact sink: %w", err)
	}
	a.Sink = []string{folio.SinkInbox, folio.SinkSMTP, folio.SinkWebhook, folio.SinkDiscard}[idx]

	passPrompt := promptui.Prompt{
		Label: "Admin password (blank disables /admin)",
		Mask:  '*',
	}
	if a.AdminPassword, err = passPrompt.Run(); err != nil {
		return a, fmt.Errorf("admin password: %w", err)
	}
	if a.Sink == folio.SinkInbox && a.AdminPassword == "" {
		fmt.Println("Note: the inbox is only readable at /admin/, which needs a password.")
	}
	return a, nil
}

func ask(label, def string, validate promptui.ValidateFunc) (string, error) {
	p := promptui.Prompt{Label: label, Default: def, Validate: validate}
	v, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("%s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(v), nil
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

func optionalEmail(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(s)); err != nil {
		return errors.New("not an email address")
	}
	return nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
