// Package game 是猜拳對戰的核心引擎：大廳上線名單、挑戰邀請、
// 對戰房間與回合結算都在這裡，狀態全部存在記憶體。
//
// 三個存放區（上線名單、邀請、房間）各自以鍵值同步：
// 房間索引只保護查找與增刪，單一房間的複合操作由房間自己的鎖保護，
// 不同房間之間互不阻塞。對戰結束時引擎透過 Finalizer 介面
// 把不可變的對戰快照交給持久層，每場對戰恰好一次。
package game
