package list

import (
	"github.com/hitoshi/listman/internal/model"
)

// requireIdentity は呼び出し元の識別子が指定されていることを検証する。
// 集約の読み込み前に評価する。
func requireIdentity(callerID string) error {
	if callerID == "" {
		return model.NewAuthRequiredError()
	}
	return nil
}

// requireOwner は呼び出し元がリストの所有者であることを検証する。
// 照合対象はリストのownerIdフィールドのみで、members配列は参照しない。
func requireOwner(list *model.List, callerID string) error {
	if list.OwnerID != callerID {
		return model.NewForbiddenError()
	}
	return nil
}
