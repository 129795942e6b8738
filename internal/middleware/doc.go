// Package middleware 提供了 HTTP 請求處理的中間件。
//
// 目前只有 JWT 身份驗證：所有遊戲操作都要求一個已驗證的玩家身份，
// 未通過驗證的請求在進入引擎之前就被擋下。
package middleware
