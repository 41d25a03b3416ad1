package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/wolfeidau/certgen/internal/keystore"
)

// ListCmd lists all stored keys.
type ListCmd struct{}

func (c *ListCmd) Run(ctx context.Context, globals *Globals) error {
	store, err := globals.openStore()
	if err != nil {
		return err
	}

	entries, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}

	out := globals.out()

	if len(entries) == 0 {
		fmt.Fprintln(out, "No keys found.")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "To create a new key:")
		fmt.Fprintln(out, "  certgen keygen <name>")
		return nil
	}

	defaultName := ""
	if def, err := store.GetDefault(); err == nil {
		defaultName = def.Name
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tALGORITHM\tFINGERPRINT\tDEFAULT")

	for _, entry := range entries {
		isDefault := ""
		if entry.Name == defaultName {
			isDefault = "*"
		}

		// Truncate fingerprint for display
		fp := entry.Fingerprint
		if len(fp) > 12 {
			fp = fp[:12] + "..."
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", entry.Name, entry.Algorithm, fp, isDefault)
	}

	return w.Flush()
}

// ShowCmd shows details of a stored key.
type ShowCmd struct {
	Name   string `arg:"" help:"Key name"`
	Format string `help:"Output format" enum:"text,json,yaml" default:"text"`
}

type showOutput struct {
	keystore.Entry `yaml:",inline"`
	Default        bool   `json:"default" yaml:"default"`
	PublicKey      string `json:"public_key" yaml:"public_key"`
}

func (c *ShowCmd) Run(ctx context.Context, globals *Globals) error {
	store, err := globals.openStore()
	if err != nil {
		return err
	}

	entry, err := store.Get(c.Name)
	if err != nil {
		return keyError(c.Name, err)
	}

	publicKeyPEM, err := store.LoadPublicKeyPEM(c.Name)
	if err != nil {
		return fmt.Errorf("failed to load public key: %w", err)
	}

	def, _ := store.GetDefault()
	show := showOutput{
		Entry:     *entry,
		Default:   def != nil && def.Name == entry.Name,
		PublicKey: publicKeyPEM,
	}

	out := globals.out()

	switch c.Format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(show)
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(show)
	}

	fmt.Fprintf(out, "Name:         %s\n", entry.Name)
	fmt.Fprintf(out, "ID:           %s\n", entry.ID)
	fmt.Fprintf(out, "Algorithm:    %s\n", entry.Algorithm)
	fmt.Fprintf(out, "Fingerprint:  %s\n", entry.Fingerprint)
	fmt.Fprintf(out, "Backend:      %s\n", entry.Backend)
	fmt.Fprintf(out, "Imported:     %v\n", entry.Imported)
	fmt.Fprintf(out, "Default:      %v\n", show.Default)
	fmt.Fprintf(out, "Created:      %s\n", entry.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Public Key:")
	fmt.Fprint(out, publicKeyPEM)

	return nil
}

// PubkeyCmd prints the public key PEM of a stored key.
type PubkeyCmd struct {
	Name string `arg:"" optional:"" help:"Key name (default key when omitted)"`
}

func (c *PubkeyCmd) Run(ctx context.Context, globals *Globals) error {
	store, err := globals.openStore()
	if err != nil {
		return err
	}

	kp, err := globals.loadKey(store, c.Name)
	if err != nil {
		return err
	}

	fmt.Fprint(globals.out(), kp.PublicKeyPEM())
	return nil
}

// DeleteCmd removes a stored key.
type DeleteCmd struct {
	Name string `arg:"" help:"Key name"`
}

func (c *DeleteCmd) Run(ctx context.Context, globals *Globals) error {
	store, err := globals.openStore()
	if err != nil {
		return err
	}

	if err := store.Delete(c.Name); err != nil {
		return keyError(c.Name, err)
	}

	fmt.Fprintf(globals.out(), "Deleted key: %s\n", c.Name)
	return nil
}

// DefaultCmd sets the default key.
type DefaultCmd struct {
	Name string `arg:"" help:"Key name"`
}

func (c *DefaultCmd) Run(ctx context.Context, globals *Globals) error {
	store, err := globals.openStore()
	if err != nil {
		return err
	}

	if err := store.SetDefault(c.Name); err != nil {
		return keyError(c.Name, err)
	}

	fmt.Fprintf(globals.out(), "Default key: %s\n", c.Name)
	return nil
}
