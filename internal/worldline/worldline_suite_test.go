package worldline

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestWorldline(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Worldline Suite")
}
