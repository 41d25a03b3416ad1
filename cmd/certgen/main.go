package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/certgen/cmd/certgen/internal/commands"
	"github.com/wolfeidau/certgen/internal/logger"
)

var (
	version = "dev"
	cli     struct {
		Keygen     commands.KeygenCmd     `cmd:"" help:"Generate a new key pair"`
		Import     commands.ImportCmd     `cmd:"" help:"Import an existing private key"`
		List       commands.ListCmd       `cmd:"" help:"List stored keys"`
		Show       commands.ShowCmd       `cmd:"" help:"Show key details"`
		Pubkey     commands.PubkeyCmd     `cmd:"" help:"Print the public key of a stored key"`
		Delete     commands.DeleteCmd     `cmd:"" help:"Delete a stored key"`
		Default    commands.DefaultCmd    `cmd:"" help:"Set the default key"`
		Sign       commands.SignCmd       `cmd:"" help:"Sign a file"`
		Envelope   commands.EnvelopeCmd   `cmd:"" help:"Wrap DER content in a signed envelope"`
		Algorithms commands.AlgorithmsCmd `cmd:"" help:"List supported signature algorithms"`

		Home    string `help:"Key store directory (default: ~/.certgen/keys)" env:"CERTGEN_HOME"`
		Backend string `help:"Crypto backend (native or portable)" enum:"native,portable" default:"native" env:"CERTGEN_BACKEND"`
		Debug   bool   `help:"Enable debug mode."`
		Version kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("certgen"),
		kong.Description("Manage signing keys for certificates, CSRs and CRLs."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	log.Logger = logger.Setup(cli.Debug)

	err := cmd.Run(&commands.Globals{
		Debug:   cli.Debug,
		Version: version,
		Home:    cli.Home,
		Backend: cli.Backend,
	})
	cmd.FatalIfErrorf(err)
}
