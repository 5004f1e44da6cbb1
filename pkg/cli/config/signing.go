package config

import (
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/buildgate/pkg/domain/model"
)

// Signing holds the four externally managed signing secrets. They are not
// marked required here: a run that decides no build is needed must succeed
// without them, and completeness is validated right before the build tool is
// invoked.
type Signing struct {
	KeystorePath  string
	StorePassword string
	KeyAlias      string
	KeyPassword   string
}

// Flags returns CLI flags for signing configuration
func (c *Signing) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "keystore-path",
			Usage:       "Path to the signing keystore",
			Destination: &c.KeystorePath,
			Sources:     cli.EnvVars("BUILDGATE_KEYSTORE_PATH"),
		},
		&cli.StringFlag{
			Name:        "keystore-password",
			Usage:       "Keystore store password",
			Destination: &c.StorePassword,
			Sources:     cli.EnvVars("BUILDGATE_KEYSTORE_PASSWORD"),
		},
		&cli.StringFlag{
			Name:        "key-alias",
			Usage:       "Signing key alias",
			Destination: &c.KeyAlias,
			Sources:     cli.EnvVars("BUILDGATE_KEY_ALIAS"),
		},
		&cli.StringFlag{
			Name:        "key-password",
			Usage:       "Signing key password",
			Destination: &c.KeyPassword,
			Sources:     cli.EnvVars("BUILDGATE_KEY_PASSWORD"),
		},
	}
}

// Material returns the signing material passed through to the build tool
func (c *Signing) Material() *model.SigningMaterial {
	return &model.SigningMaterial{
		KeystorePath:  c.KeystorePath,
		StorePassword: c.StorePassword,
		KeyAlias:      c.KeyAlias,
		KeyPassword:   c.KeyPassword,
	}
}
