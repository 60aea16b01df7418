package initcmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const (
	templateConfig = `# yaml-language-server: $schema=https://raw.githubusercontent.com/suzuki-shunsuke/port-kics/refs/heads/main/json-schema/port-kics.json
# port-kics - https://github.com/suzuki-shunsuke/port-kics
# base_url: https://api.getport.io/v1
blueprints:
  service: service
  finding: kicsScan
# relation: kicsScan
retry:
  max_retries: 5
  base_delay: 1s
  max_delay: 32s
`
	filePermission os.FileMode = 0o644
)

// Init creates a new configuration file if it doesn't exist.
//
// Parameters:
//   - logE: logrus entry for structured logging
//   - configFilePath: path where the configuration file should be created
//
// Returns an error if file operations fail, nil if successful or file already exists.
func (c *Controller) Init(logE *logrus.Entry, configFilePath string) error {
	logE = logE.WithField("config", configFilePath)
	f, err := afero.Exists(c.fs, configFilePath)
	if err != nil {
		return fmt.Errorf("check if a configuration file exists: %w", err)
	}
	if f {
		logE.Info("the configuration file already exists")
		return nil
	}
	if err := afero.WriteFile(c.fs, configFilePath, []byte(templateConfig), filePermission); err != nil {
		return fmt.Errorf("create a configuration file: %w", err)
	}
	logE.Info("created a configuration file")
	return nil
}
