package df_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDF(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "DF Suite")
}
