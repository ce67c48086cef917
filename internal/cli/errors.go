package cli

import "fmt"

type listNotEmptyError struct {
	items int
}

func (e listNotEmptyError) Error() string {
	return fmt.Sprintf("the stored list already has %d item(s); pass --replace to overwrite it", e.items)
}
