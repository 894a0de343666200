package feedback

import (
	"os"
	"testing"

	"github.com/GauthierNelkinsky/shipshipship-template-default/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init("production")
	os.Exit(m.Run())
}
