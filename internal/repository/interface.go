package repository

import "context"

// DB は永続化先の生存確認を行うインターフェース
type DB interface {
	Ping(ctx context.Context) error
}
