package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("SALESDESK_TEST_MODE") == "" {
			_ = os.Setenv("SALESDESK_TEST_MODE", "1")
		}
	})
}
