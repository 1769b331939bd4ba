// Package tagstore 实现标签的权威数据集
//
// 标签定义来自一个或多个数据包目录，按顺序叠加：
//
//	${Pack}/tags/<kind>/<namespace>/<path>.yaml
//
// 文件格式：
//
//	replace: false
//	values:
//	  - mod:oak            # 元素
//	  - "#mod:logs"        # 引用另一个标签
//	  - id: mod:birch      # 可选元素，解析失败时跳过
//	    required: false
//
// 后加载的数据包默认追加到已有定义，replace: true 时覆盖。
// 标签引用递归展开；缺失必需条目或存在循环引用的标签被丢弃并记录日志，
// 不影响其他标签。
//
// 每次 Reload 生成一个新的不可变快照并原子替换，版本号加一，
// 之后调用一次 Factory.MarkReloaded。合并后的定义写入 BadgerDB，
// 启动时可以用 LoadPersisted 恢复。
package tagstore
