// Command cpprop loads constraint model files, propagates them and searches
// for solutions.
//
//	cpprop propagate models/*.yaml --workers 4
//	cpprop solve model.yaml --limit 10 --timeout 5s
//	cpprop --metrics propagate model.yaml
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
