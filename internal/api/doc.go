// Package api 處理 HTTP 請求路由和處理。
//
// 這個包包含了輪詢式的 REST handlers 與推送式的 WebSocket handler，
// 兩種傳輸層驅動同一個遊戲引擎。它負責將請求轉換為引擎操作，
// 並將結果轉換回 HTTP 響應或房間廣播。
package api
