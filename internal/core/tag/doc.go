// Package tag 实现标签派生视图缓存
//
// Delegate 包装一个可变、带版本号的权威数据集，对外提供廉价且线程安全的
// 访问器：数据集版本未变时返回缓存的视图，版本变化后重新计算。
//
// 数据集在重新加载时被整体替换，而 Delegate 本身的对象身份在整个生命周期内
// 保持不变，其他组件可以长期持有它。内部只交换一个原子指针：
//
//	读路径: Load -> 比较版本 -> 命中直接返回
//	未命中: 计算新视图 -> CompareAndSwap 发布
//
// 并发读者可能重复计算同一个版本的视图，结果相同，允许这种冗余。
package tag
