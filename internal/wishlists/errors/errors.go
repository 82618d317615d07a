package errors

import "errors"

var (
	ErrNotInWishlist = errors.New("property not in wishlist")
)
