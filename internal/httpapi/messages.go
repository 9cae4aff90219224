// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Aikagi Contributors

package httpapi

// User-facing messages. These are returned verbatim in response bodies and
// rendered by the client, so they stay in Japanese.
const (
	// msgMalformedBody is returned when the request body cannot be parsed.
	msgMalformedBody = "リクエストボディの形式が不正です。"

	// msgEmailTaken is returned when a signup email is already registered.
	msgEmailTaken = "このメールアドレスは既に使用されています。"

	// msgSignupFailed is the generic signup failure. Internal details never
	// reach the client.
	msgSignupFailed = "サインアップのサーバサイドの処理に失敗しました。"

	// msgInvalidCredentials covers both an unknown email and a wrong
	// password; the two cases must be indistinguishable.
	msgInvalidCredentials = "メールアドレスまたはパスワードの組み合わせが正しくありません。"

	// msgLoginFailed is the generic login failure.
	msgLoginFailed = "ログインのサーバサイドの処理に失敗しました。"

	// msgAuthRequired is returned when no valid session accompanies a
	// request that needs one.
	msgAuthRequired = "認証が必要です"

	// msgUserNotFound is returned when a session points at a user that no
	// longer exists.
	msgUserNotFound = "ユーザーが見つかりません"

	// msgCurrentPasswordWrong is returned when the current password check
	// fails during a password change.
	msgCurrentPasswordWrong = "現在のパスワードが正しくありません"

	// msgNewPasswordMismatch is returned when the new password and its
	// confirmation differ.
	msgNewPasswordMismatch = "新しいパスワードが一致しません"

	// msgPasswordChanged confirms a successful password change.
	msgPasswordChanged = "パスワードを変更しました"

	// msgChangePasswordFailed is the generic password change failure.
	msgChangePasswordFailed = "パスワード変更のサーバサイドの処理に失敗しました。"
)
