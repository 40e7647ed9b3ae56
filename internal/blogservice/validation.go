package blogservice

import (
	"github.com/sushihentaime/bloglist/internal/common"
)

func validateTitle(v *common.Validator, title string) {
	v.Check(v.NotBlank(title), "title", "must be provided")
}

func validateURL(v *common.Validator, url string) {
	v.Check(v.NotBlank(url), "url", "must be provided")
}

func validateLikes(v *common.Validator, likes int) {
	v.Check(likes >= 0, "likes", "must not be negative")
}

func validateOwner(v *common.Validator, owner *Owner) {
	v.Check(owner != nil && owner.ID != "", "user", "must be provided")
}
