package integration_tests

import "fmt"

func frame(format string, f int) string {
	return fmt.Sprintf(format, f)
}
