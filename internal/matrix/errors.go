package matrix

import "errors"

// ErrSingular is returned by InvertMat when a k x k matrix has no
// inverse over GF(2^8).
var ErrSingular = errors.New("matrix: singular matrix")
