// Package devserver is an in-memory listing backend for development and
// tests. It speaks the same envelope protocol as the production API:
//
//	POST /device/register   {brand, model, deviceId, os, macId} -> {deviceID, token}
//	POST /device/renew      {deviceID} -> {token}
//	POST /user/login        {phone, password} -> {token, user}     device
//	POST /user/otp          {phone}                                device
//	GET  /user/profile                                             device+user
//	PUT  /user/profile      {fullName, email, address, avatar}     device+user
//	GET  /post/mine         ?page&pageSize                         device+user
//	POST /post/image        multipart "image"                      device+user
//	GET  /post/{id}                                                device
//	GET  /news              ?page&pageSize                         device
//	GET  /project           ?page&pageSize                         device
//
// Device tokens travel in x-banbds-device-token, user tokens as
// "Authorization: Bearer". Both are HS256 JWTs with a TTL. Renewing a
// device keeps the token it replaces valid for a short grace period and
// revokes anything older, so a stale token is answered with Unauthorized
// "Device token invalid". Renewing an unknown device id is answered with
// Unauthorized "Device not registered".
//
// All state is held in memory and lost on exit.
package devserver
