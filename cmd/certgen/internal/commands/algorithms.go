package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/wolfeidau/certgen/internal/keypair"
	"github.com/wolfeidau/certgen/internal/sigalg"
)

// AlgorithmsCmd lists the signature algorithm catalogue.
type AlgorithmsCmd struct{}

func (c *AlgorithmsCmd) Run(ctx context.Context, globals *Globals) error {
	backends := []keypair.Backend{keypair.NativeBackend(), keypair.PortableBackend()}

	w := tabwriter.NewWriter(globals.out(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tFAMILY\tHASH\tNATIVE\tPORTABLE")

	for alg := range sigalg.All() {
		hash := "-"
		if alg.Hash() != 0 {
			hash = alg.Hash().String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s", alg.Name(), alg.Family(), hash)
		for _, b := range backends {
			fmt.Fprintf(w, "\t%s", support(b, alg))
		}
		fmt.Fprintln(w)
	}

	return w.Flush()
}

func support(b keypair.Backend, alg *sigalg.SignatureAlgorithm) string {
	switch {
	case !keypair.Supports(b, alg):
		return "no"
	case alg.Family() == sigalg.FamilyRSA && !b.Capabilities().RSAGeneration:
		return "import only"
	default:
		return "yes"
	}
}
